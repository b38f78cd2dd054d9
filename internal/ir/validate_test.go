package ir

import "testing"

func TestValidate_CleanMachine(t *testing.T) {
	c := newTestConfig(t, 2, 1)
	if err := c.AssignTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}
	if err := c.AssignTransition(1, 0, 0); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}

	warns, err := Validate(c)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got: %v", warns)
	}
}

func TestValidate_UnreachableState(t *testing.T) {
	c := newTestConfig(t, 3, 1)
	if err := c.AssignTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}
	if err := c.AssignTransition(1, 0, 0); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}

	warns, err := Validate(c)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// State 2 is unreachable; its missing exit is not reported again.
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got: %v", warns)
	}
	if warns[0].Code != WarnUnreachable || warns[0].State != 2 {
		t.Errorf("unexpected warning: %v", warns[0])
	}
}

func TestValidate_DeadEnd(t *testing.T) {
	c := newTestConfig(t, 2, 1)
	if err := c.AssignTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}

	warns, err := Validate(c)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warns) != 1 || warns[0].Code != WarnDeadEnd || warns[0].State != 1 {
		t.Errorf("expected a DEAD_END warning for state 1, got: %v", warns)
	}
}

func TestValidate_SelfLoopIsNotAnExit(t *testing.T) {
	c := newTestConfig(t, 2, 1)
	if err := c.AssignTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}
	if err := c.AssignTransition(1, 0, 1); err != nil {
		t.Fatalf("AssignTransition: %v", err)
	}

	warns, err := Validate(c)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warns) != 1 || warns[0].Code != WarnDeadEnd {
		t.Errorf("expected a DEAD_END warning, got: %v", warns)
	}
}

func TestValidate_InnerTransitionCountsAsExit(t *testing.T) {
	c := newTestConfig(t, 2, 1)
	if err := c.AssignInnerTransition(0, 0, 1); err != nil {
		t.Fatalf("AssignInnerTransition: %v", err)
	}
	if err := c.AssignInnerTransition(1, 0, 0); err != nil {
		t.Fatalf("AssignInnerTransition: %v", err)
	}

	warns, err := Validate(c)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got: %v", warns)
	}
}

func TestValidate_PassChain(t *testing.T) {
	c := newTestConfig(t, 3, 1)
	if _, err := c.AssignPassState(1, 2); err != nil {
		t.Fatalf("AssignPassState: %v", err)
	}
	if _, err := c.AssignPassState(2, 0); err != nil {
		t.Fatalf("AssignPassState: %v", err)
	}

	if _, err := Validate(c); !hasCode(err, ErrCodePassChain) {
		t.Errorf("expected PASS_CHAIN, got: %v", err)
	}
}

func TestValidate_DescriptorConflicts(t *testing.T) {
	// The assignment API refuses to build these combinations, so the
	// descriptors are corrupted directly to exercise the validator's
	// own checks.
	c := newTestConfig(t, 3, 1)
	c.states[1].Pass = true
	c.states[1].PassTarget = 1
	if _, err := Validate(c); !hasCode(err, ErrCodePassSelf) {
		t.Errorf("expected PASS_SELF, got: %v", err)
	}

	c = newTestConfig(t, 3, 1)
	c.states[1].Pass = true
	c.states[1].PassTarget = 2
	c.states[1].Timeout = TimerDescriptor{Enabled: true, Duration: 1, Unit: Second, Next: 0}
	if _, err := Validate(c); !hasCode(err, ErrCodePassTimeout) {
		t.Errorf("expected PASS_TIMEOUT, got: %v", err)
	}
}
