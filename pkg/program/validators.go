package program

// The four account-validity predicates every instruction handler gates on
// before touching an account's data. None of them ever panics or retries;
// a failing predicate always resolves to the handler returning
// ErrInvalidArgument.

// ValidFundingAccount reports whether a is usable as the fee-paying,
// signing account of an instruction: it must have signed the transaction
// and be writable (so the runtime can debit it).
func ValidFundingAccount(a *AccountInfo) bool {
	return a != nil && a.IsSigner && a.IsWritable
}

// ValidSignableAccount reports whether a is a writable account owned by
// this program, signed by the transaction, and large enough to hold a
// value of the given encoded size. Used for accounts an instruction both
// authenticates via signature and mutates (mapping tables, price accounts
// on init/add).
func ValidSignableAccount(a *AccountInfo, programID PubKey, minSize int) bool {
	return a != nil && a.IsSigner && a.IsWritable && a.Owner == programID && len(a.Data) >= minSize
}

// ValidWritableAccount reports whether a is a writable account owned by
// this program and large enough to hold a value of the given encoded size,
// without requiring a signature. Used for accounts an instruction mutates
// but does not need to authenticate (the price account during upd_price,
// authenticated instead via its publisher roster).
func ValidWritableAccount(a *AccountInfo, programID PubKey, minSize int) bool {
	return a != nil && a.IsWritable && a.Owner == programID && len(a.Data) >= minSize
}

// ValidReadableAccount reports whether a is owned by this program and
// large enough to hold a value of the given encoded size, with no signer
// or writability requirement. None of the instruction handlers calls it;
// AddSymbol checks its mapping table with ValidWritableAccount, since it
// writes the new node into it.
func ValidReadableAccount(a *AccountInfo, programID PubKey, minSize int) bool {
	return a != nil && a.Owner == programID && len(a.Data) >= minSize
}
