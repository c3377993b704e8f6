// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/state"
)

// Well-known devnet records. The pool record is left empty so that the
// initialize operation can claim it on first boot.
var (
	DevAsset = haven.BytesToAddress([]byte("haven.devnet-asset"))
	DevPool  = haven.BytesToAddress([]byte("haven.devnet-pool"))
	DevVault = haven.BytesToAddress([]byte("haven.devnet-vault"))
)

// DevBalance is the token balance minted to each dev account at genesis.
const DevBalance = uint64(1_000_000_000)

// DevAccount account for development.
type DevAccount struct {
	Address    haven.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"99f0500549792796c14fed62011a51081dc5b5e68fe8bd8a13b86be829c4fd36",
		"7b067f53d350f1cf20ec13df416b7b73e88a1dc7331bc069fd3f6e337900069b",
		"f4a1a17039216f535d42ec23732c79943ffb45a089fbb53979b4a280aa28a8c5",
		"35b5cc144faca7d7f220fca7ad3420090861d5231d80eb23e1013426847371c1",
		"10c851d8d6c6ed9e6f625742063f292f4cf57c2dbeea8099fa3aca53ef90aef1",
		"2dd2c5b5d65913214783a6bd5679d8c6ef29ca9f2e2eae98b4add061d0b85ea0",
		"e1b72a1761ae189c10ec3783dd124b902ffd8c6b93cd9ff443d5490ce70047ff",
		"35cbc5ac0c3a2de0eb4f230ced958fd6a6c19ed36b5d2b1803a9f11978f96072",
		"b639c258292096306d2f60bc1a8da9bc434ad37f15cd44ee9a2526685f592220",
		"9d8a84b2c3f20dd95dbcd8a7fa0bebdab27a4b25ebded0e5c1cf4ef25d981313",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := haven.PubkeyToAddress(&pk.PublicKey)
		accs = append(accs, DevAccount{addr, pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevTokenAccount returns the token account address assigned to the given
// owner for the devnet asset.
func DevTokenAccount(owner haven.Address) haven.Address {
	return haven.BytesToAddress(haven.Blake2b(owner.Bytes(), DevAsset.Bytes(), []byte("token-account")).Bytes()[12:])
}

// NewDevnet creates the genesis for solo mode. Each dev account gets a token
// account funded with DevBalance.
func NewDevnet() *Genesis {
	admin := DevAccounts()[0].Address

	builder := new(Builder).
		State(func(st *state.State) error {
			signer, nonce, err := authority.Derive(DevAsset, DevPool)
			if err != nil {
				return err
			}

			ldg := ledger.New(haven.LedgerID, st)
			if err := ldg.CreateAsset(DevAsset, signer, admin); err != nil {
				return err
			}
			if err := ldg.CreateAccount(DevVault, DevAsset, signer); err != nil {
				return err
			}

			seeds := authority.Seeds{Asset: DevAsset, Pool: DevPool, Nonce: nonce}
			for _, a := range DevAccounts() {
				acc := DevTokenAccount(a.Address)
				if err := ldg.CreateAccount(acc, DevAsset, a.Address); err != nil {
					return err
				}
				if err := ldg.Mint(DevAsset, acc, ledger.WithSeeds(seeds), DevBalance); err != nil {
					return err
				}
			}
			return nil
		})

	id := haven.Blake2b([]byte("devnet"), DevAsset.Bytes(), DevPool.Bytes(), DevVault.Bytes())
	return &Genesis{builder, id, "devnet"}
}
