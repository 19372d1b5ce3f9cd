package server

import (
	"encoding/json"

	"luxury-tycoon/internal/economy"
	"luxury-tycoon/internal/errors"
)

// envelope is the shape shared by every action message:
// {"type": "buy", "instrument_id": "aurum", "shares": 10}
type envelope struct {
	Type economy.ActionKind `json:"type"`
}

// DecodeAction parses a JSON action message. Fields sit next to "type";
// unknown fields are ignored. Spin results cannot be submitted directly.
func DecodeAction(data []byte) (economy.Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedAction, err.Error())
	}

	switch env.Type {
	case economy.KindBuy:
		return decodeInto[economy.Buy](data)
	case economy.KindSell:
		return decodeInto[economy.Sell](data)
	case economy.KindTick:
		return economy.Tick{}, nil
	case economy.KindPurchaseItem:
		return decodeInto[economy.PurchaseItem](data)
	case economy.KindAddPrimary:
		return decodeInto[economy.AddPrimary](data)
	case economy.KindAddPremium:
		return decodeInto[economy.AddPremium](data)
	case economy.KindSpendPremium:
		return decodeInto[economy.SpendPremium](data)
	case economy.KindClaimDailyReward:
		return economy.ClaimDailyReward{}, nil
	case economy.KindResolveDailySpin:
		// Prizes are drawn by the server.
		return nil, errors.Wrap(errors.ErrUnknownAction, "resolve_daily_spin is only issued by /api/spin")
	case economy.KindReset:
		return economy.Reset{}, nil
	case economy.KindUnlock:
		return decodeInto[economy.Unlock](data)
	case economy.KindCompleteTutorial:
		return economy.CompleteTutorial{}, nil
	case "":
		return nil, errors.Wrap(errors.ErrMalformedAction, "missing type")
	}
	return nil, errors.Wrapf(errors.ErrUnknownAction, "type %q", env.Type)
}

func decodeInto[T economy.Action](data []byte) (economy.Action, error) {
	var a T
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedAction, err.Error())
	}
	return a, nil
}
