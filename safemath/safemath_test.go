// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	sum, err := Add[uint64](1, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	sum, err = Add[uint64](math.MaxUint64, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = Add[uint64](math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Add[uint64](1, math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSub(t *testing.T) {
	diff, err := Sub[uint64](3, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), diff)

	diff, err = Sub[uint64](2, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), diff)

	_, err = Sub[uint64](2, 3)
	assert.ErrorIs(t, err, ErrUnderflow)

	_, err = Sub[uint64](0, 1)
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestMul(t *testing.T) {
	prod, err := Mul[uint64](3, 4)
	assert.NoError(t, err)
	assert.Equal(t, uint64(12), prod)

	prod, err = Mul[uint64](math.MaxUint64, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), prod)

	_, err = Mul[uint64](math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrOverflow)
}
