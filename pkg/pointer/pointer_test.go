// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-identity/pkg/pointer"
)

/*
TestNonZero verifies zero values map to nil and everything else to a pointer.
*/
func TestNonZero(t *testing.T) {
	assert.Nil(t, pointer.NonZero(""))
	assert.Nil(t, pointer.NonZero(0))
	assert.Equal(t, "alice", *pointer.NonZero("alice"))
}

/*
TestVal verifies nil dereferences to the zero value.
*/
func TestVal(t *testing.T) {
	var missing *string
	assert.Equal(t, "", pointer.Val(missing))
	assert.Equal(t, "alice", pointer.Val(pointer.To("alice")))
}
