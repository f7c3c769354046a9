package models

import "alyra/pkg/domain"

// IsAdministrator reports whether caller is the ballot's fixed administrator.
func (b *Ballot) IsAdministrator(caller domain.Identity) bool {
	return !caller.IsNil() && caller == b.Administrator
}

// IsVoter reports whether caller is a registered voter.
func (b *Ballot) IsVoter(caller domain.Identity) bool {
	v, ok := b.Voters[caller]
	return ok && v.IsRegistered
}

func (b *Ballot) requireAdministrator(caller domain.Identity) error {
	if !b.IsAdministrator(caller) {
		return ErrNotAdministrator
	}
	return nil
}

func (b *Ballot) requireVoter(caller domain.Identity) error {
	if !b.IsVoter(caller) {
		return ErrNotVoter
	}
	return nil
}

// authorize runs the role check, then the phase check, for op.
func (b *Ballot) authorize(caller domain.Identity, op Operation) error {
	var err error
	switch op {
	case OpAddProposal, OpSetVote:
		err = b.requireVoter(caller)
	default:
		err = b.requireAdministrator(caller)
	}
	if err != nil {
		return err
	}
	return op.Check(b.Status)
}
