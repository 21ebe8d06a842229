package client

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/ledger/types"
)

// PendingTx is the handle of a submitted operation awaiting confirmation.
type PendingTx struct {
	Hash common.Hash
}

// receiptPollInterval is how often AwaitConfirmation asks for the receipt.
const receiptPollInterval = 500 * time.Millisecond

// Transfer submits an ERC-20 transfer.
func (c *EthClient) Transfer(ctx context.Context, recipient string, amount *big.Int) (*PendingTx, error) {
	if !common.IsHexAddress(recipient) {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", recipient)
	}
	data, err := c.abi.Pack("transfer", common.HexToAddress(recipient), amount)
	if err != nil {
		return nil, errors.Wrap(err, "pack transfer")
	}
	return c.submit(ctx, data)
}

// OpenOrder submits an ERC-7683 open() with the standard Order payload.
func (c *EthClient) OpenOrder(ctx context.Context, params types.OpenParams) (*PendingTx, error) {
	orderData, err := encodeOrderData(params)
	if err != nil {
		return nil, err
	}

	fillDeadline := params.FillDeadline
	if fillDeadline == 0 {
		fillDeadline = uint32(time.Now().Add(time.Hour).Unix())
	}

	order := struct {
		FillDeadline  uint32      `abi:"fillDeadline"`
		OrderDataType common.Hash `abi:"orderDataType"`
		OrderData     []byte      `abi:"orderData"`
	}{
		FillDeadline:  fillDeadline,
		OrderDataType: crypto.Keccak256Hash([]byte(OrderDataTypeString)),
		OrderData:     orderData,
	}

	data, err := c.abi.Pack("open", order)
	if err != nil {
		return nil, errors.Wrap(err, "pack open")
	}
	return c.submit(ctx, data)
}

// FillOrder submits fill() for one fill instruction of an order.
func (c *EthClient) FillOrder(ctx context.Context, id common.Hash, originData []byte) (*PendingTx, error) {
	data, err := c.abi.Pack("fill", id, originData, []byte{})
	if err != nil {
		return nil, errors.Wrap(err, "pack fill")
	}
	return c.submit(ctx, data)
}

// ConfirmOrder submits confirm() for a filled order.
func (c *EthClient) ConfirmOrder(ctx context.Context, id common.Hash) (*PendingTx, error) {
	data, err := c.abi.Pack("confirm", id)
	if err != nil {
		return nil, errors.Wrap(err, "pack confirm")
	}
	return c.submit(ctx, data)
}

// AwaitConfirmation blocks until the transaction is mined, and fails if it
// reverted.
func (c *EthClient) AwaitConfirmation(ctx context.Context, tx *PendingTx) error {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.http.TransactionReceipt(ctx, tx.Hash)
		if err == nil && receipt != nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return errors.Errorf("transaction %s reverted", tx.Hash.Hex())
			}
			return nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return errors.Wrap(err, "fetch receipt")
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "await confirmation")
		case <-ticker.C:
		}
	}
}

// submit signs and sends calldata against the contract. Requires a key.
func (c *EthClient) submit(ctx context.Context, data []byte) (*PendingTx, error) {
	if c.privateKey == nil {
		return nil, ErrSessionRequired
	}

	nonce, err := c.http.PendingNonceAt(ctx, c.account)
	if err != nil {
		return nil, errors.Wrap(err, "fetch nonce")
	}

	gasPrice, err := c.http.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "suggest gas price")
	}

	gasLimit, err := c.http.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.account,
		To:    &c.contract,
		Data:  data,
		Value: big.NewInt(0),
	})
	if err != nil {
		return nil, errors.Wrap(err, "estimate gas")
	}

	tx := ethtypes.NewTransaction(nonce, c.contract, big.NewInt(0), gasLimit, gasPrice, data)
	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign transaction")
	}

	if err := c.http.SendTransaction(ctx, signedTx); err != nil {
		return nil, errors.Wrap(err, "send transaction")
	}

	return &PendingTx{Hash: signedTx.Hash()}, nil
}

// encodeOrderData ABI-encodes the user order payload carried inside open().
func encodeOrderData(params types.OpenParams) ([]byte, error) {
	addressTy, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	uint64Ty, err := abi.NewType("uint64", "", nil)
	if err != nil {
		return nil, err
	}

	args := abi.Arguments{
		{Type: addressTy}, // recipient
		{Type: uint256Ty}, // amount
		{Type: uint64Ty},  // toChain
		{Type: addressTy}, // feeToken
		{Type: uint256Ty}, // feeValue
	}

	feeValue := params.FeeValue
	if feeValue == nil {
		feeValue = big.NewInt(0)
	}

	packed, err := args.Pack(params.Recipient, params.Amount, params.ToChain, params.FeeToken, feeValue)
	if err != nil {
		return nil, errors.Wrap(err, "encode order data")
	}
	return packed, nil
}
