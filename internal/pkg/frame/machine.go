package frame

import (
	"context"
)

// Input is what the state machine sees of one interaction. All fields must
// come from the verified message or from the ledger, never from unsigned
// request data.
type Input struct {
	AlreadyOptedIn bool
	ButtonIndex    int
	InputText      string
}

// Hooks are the side effects Decide may need. They are only called on the
// branch that needs them.
type Hooks struct {
	IsChannelMember func(ctx context.Context) (bool, error)
	RecordOptIn     func(ctx context.Context, address string) bool
}

// Decision is the outcome of one interaction.
type Decision struct {
	Screen  Screen
	Address string
	// Err is set when an upstream dependency blocked the transition.
	Err error
}

// Decide picks the next screen. No state is kept between calls; the flow is
// reconstructed from the ledger and the current message every time.
func Decide(ctx context.Context, in Input, hooks Hooks) Decision {
	if in.AlreadyOptedIn {
		return Decision{Screen: ScreenAlreadyOptedIn}
	}
	if in.ButtonIndex <= 0 {
		return Decision{Screen: ScreenEntry}
	}

	address := NormalizeAddress(in.InputText)
	if address == "" {
		return Decision{Screen: ScreenEnterAddress}
	}
	if !ValidAddress(address) {
		return Decision{Screen: ScreenInvalidAddress, Address: address}
	}

	member, err := hooks.IsChannelMember(ctx)
	if err != nil {
		return Decision{Screen: ScreenError, Address: address, Err: err}
	}
	if !member {
		return Decision{Screen: ScreenNotMember, Address: address}
	}

	if !hooks.RecordOptIn(ctx, address) {
		return Decision{Screen: ScreenError, Address: address}
	}
	return Decision{Screen: ScreenSuccess, Address: address}
}
