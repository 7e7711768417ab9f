/*
Package ledger keeps the confirmations owners give to off-chain messages of
their multi-party accounts.

A message is created by Propose with at least one valid owner signature and
extended by Confirm, one owner at a time. The ledger never deletes anything
and never decides whether a message is sufficiently authorized: callers
compare the number of confirmations with the account threshold themselves.
PreparedSignature returns the confirmations joined in ascending owner
order, ready to be checked by the account contract.
*/
package ledger

import (
	"bytes"
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/denylist"
	"github.com/iov-one/msgauth/directory"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msghash"
	"github.com/iov-one/msgauth/sigcodec"
	"github.com/iov-one/msgauth/verifier"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger verifies signatures and records confirmations. It is safe for
// concurrent use.
type Ledger struct {
	store    Store
	dir      directory.OwnerDirectory
	deny     denylist.Checker
	chainID  *big.Int
	verifier *verifier.Verifier
	logger   log.Logger
	metrics  *Metrics
	now      func() msgauth.UnixTime

	verifierOpts []verifier.Option
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger and verifier logger.
func WithLogger(l log.Logger) Option {
	return func(led *Ledger) {
		led.logger = l.With("module", "ledger")
		led.verifierOpts = append(led.verifierOpts, verifier.WithLogger(l))
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(led *Ledger) {
		led.metrics = m
	}
}

// WithMaxDepth limits the nesting of contract owners.
func WithMaxDepth(n int) Option {
	return func(led *Ledger) {
		led.verifierOpts = append(led.verifierOpts, verifier.WithMaxDepth(n))
	}
}

// WithClock replaces the time source.
func WithClock(now func() msgauth.UnixTime) Option {
	return func(led *Ledger) {
		led.now = now
	}
}

// New returns a ledger. The directory is read on every operation, deny is
// consulted for every top level signer. A nil deny list bans nobody.
func New(store Store, dir directory.OwnerDirectory, deny denylist.Checker, chainID *big.Int, opts ...Option) *Ledger {
	if deny == nil {
		deny = (*denylist.List)(nil)
	}
	l := &Ledger{
		store:   store,
		dir:     dir,
		deny:    deny,
		chainID: chainID,
		logger:  log.NewNopLogger(),
		now:     msgauth.Now,
	}
	for _, fn := range opts {
		fn(l)
	}
	l.verifier = verifier.New(dir, chainID, l.verifierOpts...)
	return l
}

// ProposeRequest describes a new message and its first signatures.
type ProposeRequest struct {
	Account common.Address
	Message msghash.Message
	// Signature holds one record per signing owner.
	Signature []byte
	// ClaimedHash, if set, must match the computed message hash.
	ClaimedHash *common.Hash
	Origin      string
	AppID       int64
}

// Propose creates a message. Every record of the signature must
// authenticate an owner of the account that is not banned, or nothing is
// stored.
func (l *Ledger) Propose(ctx context.Context, req ProposeRequest) (msg *Message, err error) {
	defer l.observe("propose", time.Now(), &err)

	if req.AppID < 0 {
		return nil, errors.Wrap(errors.ErrInput, "app id must not be negative")
	}
	hash, err := msghash.Compute(req.Account, l.chainID, req.Message)
	if err != nil {
		return nil, err
	}
	ctx = l.opContext(ctx, "op", "propose", "hash", hash.Hex())
	if req.ClaimedHash != nil && *req.ClaimedHash != hash {
		return nil, errors.Wrapf(msghash.ErrMalformedMessage, "claimed hash %s, computed %s", req.ClaimedHash.Hex(), hash.Hex())
	}
	switch _, err := l.store.Message(ctx, hash); {
	case err == nil:
		return nil, errors.Wrapf(ErrDuplicateMessage, "message %s for account %s", hash.Hex(), req.Account.Hex())
	case !ErrMessageNotFound.Is(err):
		return nil, err
	}

	records, err := sigcodec.Decode(req.Signature)
	if err != nil {
		return nil, err
	}

	dir := directory.NewSnapshot(l.dir)
	now := l.now()
	confs := make([]*Confirmation, 0, len(records))
	seen := make(map[common.Address]struct{}, len(records))
	for i, rec := range records {
		signer, err := l.authorize(ctx, dir, rec, hash, req.Account)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		if _, ok := seen[signer]; ok {
			return nil, errors.Wrapf(ErrDuplicateConfirmation, "owner %s signed twice", signer.Hex())
		}
		seen[signer] = struct{}{}
		confs = append(confs, &Confirmation{
			MessageHash:   hash.Bytes(),
			Owner:         signer.Bytes(),
			SignatureType: rec.Type(),
			Signature:     rec.Bytes(),
			Created:       now,
			Modified:      now,
		})
	}

	msg = &Message{
		Hash:       hash.Bytes(),
		Account:    req.Account.Bytes(),
		Kind:       req.Message.Kind(),
		Payload:    req.Message.Payload(),
		ProposedBy: confs[0].Owner,
		Created:    now,
		Modified:   now,
		Origin:     req.Origin,
		AppID:      req.AppID,
	}
	if err := l.store.CreateMessage(ctx, msg, confs); err != nil {
		return nil, err
	}
	msgauth.GetLogger(ctx).Info("message proposed", "account", req.Account.Hex(), "confirmations", len(confs))
	return msg, nil
}

// Confirm adds the confirmation of a single owner to an existing message.
func (l *Ledger) Confirm(ctx context.Context, hash common.Hash, signature []byte) (conf *Confirmation, err error) {
	defer l.observe("confirm", time.Now(), &err)

	ctx = l.opContext(ctx, "op", "confirm", "hash", hash.Hex())
	msg, err := l.store.Message(ctx, hash)
	if err != nil {
		return nil, err
	}
	records, err := sigcodec.Decode(signature)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.Wrapf(errors.ErrInput, "1 owner signature expected, got %d", len(records))
	}
	rec := records[0]
	account := msg.AccountAddress()

	dir := directory.NewSnapshot(l.dir)
	signer, err := l.verifier.WithDirectory(dir).Verify(ctx, rec, hash, account)
	if err != nil {
		return nil, err
	}
	switch ok, err := l.store.HasConfirmation(ctx, hash, signer); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(ErrDuplicateConfirmation, "owner %s already confirmed", signer.Hex())
	}
	if err := l.checkSigner(ctx, dir, signer, account); err != nil {
		return nil, err
	}

	now := l.now()
	conf = &Confirmation{
		MessageHash:   hash.Bytes(),
		Owner:         signer.Bytes(),
		SignatureType: rec.Type(),
		Signature:     rec.Bytes(),
		Created:       now,
		Modified:      now,
	}
	if err := l.store.AddConfirmation(ctx, conf); err != nil {
		return nil, err
	}
	msgauth.GetLogger(ctx).Info("message confirmed", "owner", signer.Hex())
	return conf, nil
}

// authorize verifies a record and checks that its signer may confirm
// messages of the account.
func (l *Ledger) authorize(ctx context.Context, dir *directory.Snapshot, rec sigcodec.Record, hash common.Hash, account common.Address) (common.Address, error) {
	signer, err := l.verifier.WithDirectory(dir).Verify(ctx, rec, hash, account)
	if err != nil {
		return common.Address{}, err
	}
	if err := l.checkSigner(ctx, dir, signer, account); err != nil {
		return common.Address{}, err
	}
	return signer, nil
}

func (l *Ledger) checkSigner(ctx context.Context, dir *directory.Snapshot, signer, account common.Address) error {
	owners, err := dir.Owners(ctx, account)
	if err != nil {
		if directory.ErrNotFound.Is(err) || directory.ErrUnavailable.Is(err) {
			return errors.Wrapf(err, "owners of %s", account.Hex())
		}
		return errors.Wrapf(directory.ErrUnavailable, "owners of %s: %s", account.Hex(), err)
	}
	if !directory.IsOwner(owners, signer) {
		return errors.Wrapf(ErrNotAnOwner, "%s is not an owner of %s", signer.Hex(), account.Hex())
	}
	if l.deny.IsBanned(signer) {
		return errors.Wrapf(ErrSignerBanned, "%s is not authorized to interact with the service", signer.Hex())
	}
	return nil
}

// PreparedSignature returns all confirmations of a message joined in
// ascending owner order. It returns nil if the message has no
// confirmations.
func (l *Ledger) PreparedSignature(ctx context.Context, hash common.Hash) (sig []byte, err error) {
	defer l.observe("prepared_signature", time.Now(), &err)

	if _, err := l.store.Message(ctx, hash); err != nil {
		return nil, err
	}
	confs, err := l.store.Confirmations(ctx, hash)
	if err != nil {
		return nil, err
	}
	return prepare(confs)
}

func prepare(confs []*Confirmation) ([]byte, error) {
	if len(confs) == 0 {
		return nil, nil
	}
	sorted := append([]*Confirmation(nil), confs...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Owner, sorted[j].Owner) < 0
	})
	records := make([]sigcodec.Record, 0, len(sorted))
	for _, c := range sorted {
		rec, err := c.Record()
		if err != nil {
			return nil, errors.Wrapf(err, "confirmation of %x", c.Owner)
		}
		records = append(records, rec)
	}
	return sigcodec.Encode(records), nil
}

// MessageView is a message together with its confirmations.
type MessageView struct {
	*Message
	// Confirmations are sorted by ascending owner.
	Confirmations     []*Confirmation
	PreparedSignature []byte
}

// Message returns a message with its confirmations and prepared signature.
func (l *Ledger) Message(ctx context.Context, hash common.Hash) (*MessageView, error) {
	msg, err := l.store.Message(ctx, hash)
	if err != nil {
		return nil, err
	}
	confs, err := l.store.Confirmations(ctx, hash)
	if err != nil {
		return nil, err
	}
	sig, err := prepare(confs)
	if err != nil {
		return nil, err
	}
	return &MessageView{Message: msg, Confirmations: confs, PreparedSignature: sig}, nil
}

// Messages returns all messages of an account, newest first.
func (l *Ledger) Messages(ctx context.Context, account common.Address) ([]*Message, error) {
	msgs, err := l.store.AccountMessages(ctx, account)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Created != msgs[j].Created {
			return msgs[i].Created > msgs[j].Created
		}
		return bytes.Compare(msgs[i].Hash, msgs[j].Hash) < 0
	})
	return msgs, nil
}

// opContext returns ctx carrying the ledger logger extended with keyvals.
func (l *Ledger) opContext(ctx context.Context, keyvals ...interface{}) context.Context {
	return msgauth.WithLogInfo(msgauth.WithLogger(ctx, l.logger), keyvals...)
}

func (l *Ledger) observe(op string, start time.Time, err *error) {
	if *err != nil {
		l.logger.Debug("operation rejected", "op", op, "err", *err)
	}
	if l.metrics != nil {
		l.metrics.observe(op, time.Since(start), *err)
	}
}
