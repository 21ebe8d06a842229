package services

import "context"

// StaticWallet is a Wallet backed by a fixed account list. The daemon uses
// it to expose the configured signing key as an already-authorized account;
// an empty list models a wallet with nothing granted.
type StaticWallet struct {
	Accounts []string
	Err      error
}

func (w *StaticWallet) Authorized(context.Context) ([]string, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Accounts, nil
}

func (w *StaticWallet) RequestAccounts(context.Context) ([]string, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Accounts, nil
}
