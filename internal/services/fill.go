package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
	"github.com/bridgebot/gowatch/pkg/logger"
)

// FillOrder discovers the fill instructions declared when the order was
// opened and submits one fill per instruction, waiting for each to mine. An
// id with no discoverable instructions fails before anything is submitted.
func FillOrder(ctx context.Context, session *SessionManager, id common.Hash) error {
	signer, err := session.SigningClient()
	if err != nil {
		return err
	}

	opens, err := signer.QueryEvents(ctx, types.EventOpen)
	if err != nil {
		return errors.Wrap(err, "query open events")
	}

	var instructions []types.FillInstruction
	for _, ev := range opens {
		if ev.OrderID == id && ev.Resolved != nil {
			instructions = ev.Resolved.FillInstructions
			break
		}
	}
	if len(instructions) == 0 {
		return errors.Wrapf(client.ErrNoMatchingInstructions, "order %s", id.Hex())
	}

	for i, instruction := range instructions {
		tx, err := signer.FillOrder(ctx, id, instruction.OriginData)
		if err != nil {
			return errors.Wrapf(err, "submit fill %d/%d", i+1, len(instructions))
		}
		if err := signer.AwaitConfirmation(ctx, tx); err != nil {
			return errors.Wrapf(err, "await fill %d/%d", i+1, len(instructions))
		}
		logger.Infof("[Fill] order %s instruction %d/%d filled", id.Hex(), i+1, len(instructions))
	}
	return nil
}
