/*
Package msgauth defines the common interfaces and small value types shared by
the message authorization engine packages.

The engine lets the owners of a multi-party account authorize an off-chain
message by contributing individual signatures. The pieces live in their own
packages:

	msghash   - account scoped message hash (EIP-191 text or EIP-712 typed data)
	sigcodec  - splitting and joining of packed signature blobs
	directory - owner sets and thresholds of accounts
	verifier  - signer recovery, including recursion into contract owners
	ledger    - deduplicated, append-only confirmation store
	denylist  - signers that are never accepted

We pass context through context.Context between the ledger, the verifier and
the directory. The only value stored there by this package is the logger:

	WithLogger(Context, log.Logger) Context
	GetLogger(Context) log.Logger
*/
package msgauth
