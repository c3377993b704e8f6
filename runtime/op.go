// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"io"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehaven/haven/haven"
)

// Kind selects the operation an op performs.
type Kind uint8

const (
	KindInitialize Kind = iota + 1
	KindAirdrop
	KindInitializeUser
	KindEnterStaking
	KindLeaveStaking
)

func (k Kind) String() string {
	switch k {
	case KindInitialize:
		return "initialize"
	case KindAirdrop:
		return "airdrop"
	case KindInitializeUser:
		return "initialize_user"
	case KindEnterStaking:
		return "enter_staking"
	case KindLeaveStaking:
		return "leave_staking"
	default:
		return "unknown"
	}
}

// Op is an immutable signed operation.
type Op struct {
	body body

	cache struct {
		signingHash *haven.Bytes32
		origin      *haven.Address
	}
}

// body describes details of an op. Fields a kind does not use stay zero.
type body struct {
	Kind            Kind
	Pool            haven.Address
	Asset           haven.Address
	Vault           haven.Address
	ProgramSigner   haven.Address
	Account         haven.Address
	Amount          uint64
	DerivationNonce uint8
	Nonce           uint64
	Signature       []byte
}

// Kind returns the op kind.
func (op *Op) Kind() Kind { return op.body.Kind }

// Pool returns the pool record address.
func (op *Op) Pool() haven.Address { return op.body.Pool }

// Asset returns the presented asset identity.
func (op *Op) Asset() haven.Address { return op.body.Asset }

// Vault returns the presented vault token account.
func (op *Op) Vault() haven.Address { return op.body.Vault }

// ProgramSigner returns the claimed derived authority.
func (op *Op) ProgramSigner() haven.Address { return op.body.ProgramSigner }

// Account returns the token account the op moves tokens in or out of.
func (op *Op) Account() haven.Address { return op.body.Account }

// Amount returns the token amount.
func (op *Op) Amount() uint64 { return op.body.Amount }

// DerivationNonce returns the authority derivation nonce.
func (op *Op) DerivationNonce() uint8 { return op.body.DerivationNonce }

// Nonce returns the caller chosen nonce.
func (op *Op) Nonce() uint64 { return op.body.Nonce }

// Signature returns a copy of the signature.
func (op *Op) Signature() []byte {
	return append([]byte(nil), op.body.Signature...)
}

// SigningHash returns the hash of the op with the signature excluded.
func (op *Op) SigningHash() haven.Bytes32 {
	if cached := op.cache.signingHash; cached != nil {
		return *cached
	}

	h := haven.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			op.body.Kind,
			op.body.Pool,
			op.body.Asset,
			op.body.Vault,
			op.body.ProgramSigner,
			op.body.Account,
			op.body.Amount,
			op.body.DerivationNonce,
			op.body.Nonce,
		})
	})
	op.cache.signingHash = &h
	return h
}

// ID returns the id of the op, the hash of its signing hash and origin.
// It returns zero before a valid signature is attached.
func (op *Op) ID() (id haven.Bytes32) {
	origin, err := op.Origin()
	if err != nil {
		return
	}
	return haven.Blake2b(op.SigningHash().Bytes(), origin.Bytes())
}

// Origin extracts the address of the op signer.
func (op *Op) Origin() (haven.Address, error) {
	if cached := op.cache.origin; cached != nil {
		return *cached, nil
	}

	if len(op.body.Signature) != 65 {
		return haven.Address{}, ErrInvalidSignature
	}
	hash := op.SigningHash()
	pub, err := crypto.SigToPub(hash.Bytes(), op.body.Signature)
	if err != nil {
		return haven.Address{}, err
	}
	origin := haven.PubkeyToAddress(pub)
	op.cache.origin = &origin
	return origin, nil
}

// WithSignature creates a new op with signature set.
func (op *Op) WithSignature(sig []byte) *Op {
	newOp := Op{
		body: op.body,
	}
	newOp.body.Signature = append([]byte(nil), sig...)
	return &newOp
}

// EncodeRLP implements rlp.Encoder.
func (op *Op) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &op.body)
}

// DecodeRLP implements rlp.Decoder.
func (op *Op) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*op = Op{body: b}
	return nil
}
