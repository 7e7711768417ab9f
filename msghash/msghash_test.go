package msghash

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msgauthtest/assert"
)

const mailTypedData = `{
  "types": {
    "EIP712Domain": [
      {"name": "name", "type": "string"},
      {"name": "version", "type": "string"},
      {"name": "chainId", "type": "uint256"},
      {"name": "verifyingContract", "type": "address"}
    ],
    "Person": [
      {"name": "name", "type": "string"},
      {"name": "wallet", "type": "address"}
    ],
    "Mail": [
      {"name": "from", "type": "Person"},
      {"name": "to", "type": "Person"},
      {"name": "contents", "type": "string"}
    ]
  },
  "primaryType": "Mail",
  "domain": {
    "name": "Ether Mail",
    "version": "1",
    "chainId": 1,
    "verifyingContract": "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"
  },
  "message": {
    "from": {"name": "Cow", "wallet": "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826"},
    "to": {"name": "Bob", "wallet": "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"},
    "contents": "Hello, Bob!"
  }
}`

var testAccount = common.BytesToAddress(bytes.Repeat([]byte{0x11}, 20))

func TestDigest(t *testing.T) {
	cases := map[string]struct {
		Raw     string
		Kind    Kind
		Want    common.Hash
		WantErr *errors.Error
	}{
		"plain text": {
			Raw:  `"Hello, world"`,
			Kind: KindText,
			Want: common.HexToHash("0x4e42acc7ef1dab6102278515a78f6dcd869258e95f6815933a5b68dc3d17cebc"),
		},
		"typed data": {
			Raw:  mailTypedData,
			Kind: KindTypedData,
			Want: common.HexToHash("0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2"),
		},
		"typed data with a value not declared in the schema": {
			Raw: `{
			  "types": {
			    "EIP712Domain": [{"name": "chainId", "type": "uint256"}],
			    "Note": [{"name": "body", "type": "string"}]
			  },
			  "primaryType": "Note",
			  "domain": {"chainId": 1},
			  "message": {"body": "hi", "extra": "surprise"}
			}`,
			Kind:    KindTypedData,
			WantErr: ErrMalformedMessage,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tc.Raw))
			assert.Nil(t, err)
			assert.Equal(t, tc.Kind, msg.Kind())

			got, err := Digest(msg)
			assert.IsErr(t, tc.WantErr, err)
			if tc.WantErr == nil {
				assert.Equal(t, tc.Want, got)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	cases := map[string]struct {
		Raw     string
		WantErr *errors.Error
	}{
		"text":                 {Raw: `"sign me"`},
		"surrounding spaces":   {Raw: "  \"sign me\"\n"},
		"typed data":           {Raw: mailTypedData},
		"empty":                {Raw: ``, WantErr: ErrMalformedMessage},
		"number":               {Raw: `42`, WantErr: ErrMalformedMessage},
		"array":                {Raw: `["a"]`, WantErr: ErrMalformedMessage},
		"broken string":        {Raw: `"abc`, WantErr: ErrMalformedMessage},
		"object without type":  {Raw: `{"message": {}}`, WantErr: ErrMalformedMessage},
		"object of wrong form": {Raw: `{"types": 1}`, WantErr: ErrMalformedMessage},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := ParseMessage([]byte(tc.Raw))
			assert.IsErr(t, tc.WantErr, err)
		})
	}
}

func TestPayloadIsPreserved(t *testing.T) {
	msg, err := ParseMessage([]byte(mailTypedData))
	assert.Nil(t, err)
	assert.Equal(t, []byte(mailTypedData), msg.Payload())

	again, err := FromPayload(msg.Kind(), msg.Payload())
	assert.Nil(t, err)
	d1, err := Digest(msg)
	assert.Nil(t, err)
	d2, err := Digest(again)
	assert.Nil(t, err)
	assert.Equal(t, d1, d2)

	text, err := ParseMessage([]byte(`"café"`))
	assert.Nil(t, err)
	assert.Equal(t, []byte("café"), text.Payload())

	_, err = FromPayload(KindUnknown, []byte("x"))
	assert.IsErr(t, ErrMalformedMessage, err)
}

func TestDomainSeparator(t *testing.T) {
	got := DomainSeparator(testAccount, big.NewInt(1))
	want := common.HexToHash("0xf0dcfe86ad4a409690a57dbaae9b1e14c5ea1750a48271a0a3a6037a8100624d")
	assert.Equal(t, want, got)
}

func TestCompute(t *testing.T) {
	cases := map[string]struct {
		Message Message
		Want    common.Hash
	}{
		"text": {
			Message: NewTextMessage("Hello, world"),
			Want:    common.HexToHash("0x990ef3c2c16a7d9552143f1a279d35ef086a20e595e1bf8d04feeab66ad53405"),
		},
		"typed data": {
			Message: mustParse(t, mailTypedData),
			Want:    common.HexToHash("0xc19dd63b2bd2d16d2d8141066317e7191b138c346f2569775a3f9aaee8603daf"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := Compute(testAccount, big.NewInt(1), tc.Message)
			assert.Nil(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestComputeIsScopedToAccountAndChain(t *testing.T) {
	msg := NewTextMessage("same text")
	other := common.BytesToAddress(bytes.Repeat([]byte{0x22}, 20))

	base, err := Compute(testAccount, big.NewInt(1), msg)
	assert.Nil(t, err)
	otherAccount, err := Compute(other, big.NewInt(1), msg)
	assert.Nil(t, err)
	otherChain, err := Compute(testAccount, big.NewInt(5), msg)
	assert.Nil(t, err)

	if base == otherAccount {
		t.Fatal("two accounts share a message hash")
	}
	if base == otherChain {
		t.Fatal("two chains share a message hash")
	}
}

func TestWrapHashMatchesPreimage(t *testing.T) {
	parent, err := Compute(testAccount, big.NewInt(1), NewTextMessage("nested"))
	assert.Nil(t, err)
	owner := common.BytesToAddress(bytes.Repeat([]byte{0x33}, 20))

	preimage := Preimage(testAccount, big.NewInt(1), mustDigestKeccak(t, "nested"))
	assert.Equal(t, 66, len(preimage))

	// An owner asked to validate the parent preimage signs the same hash
	// as WrapHash over the parent hash.
	assert.Equal(t, AccountHash(owner, big.NewInt(1), preimage), WrapHash(owner, big.NewInt(1), parent))
}

func mustParse(t testing.TB, raw string) Message {
	t.Helper()
	m, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("cannot parse message: %s", err)
	}
	return m
}

func mustDigestKeccak(t testing.TB, text string) common.Hash {
	t.Helper()
	d, err := Digest(NewTextMessage(text))
	if err != nil {
		t.Fatalf("cannot digest: %s", err)
	}
	return crypto.Keccak256Hash(d[:])
}
