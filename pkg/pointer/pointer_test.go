// Copyright (c) 2026 Elib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/elib/pkg/pointer"
)

/*
TestPointer covers To and Val for set and nil pointers.
*/
func TestPointer(t *testing.T) {
	id := pointer.To(int64(42))
	assert.Equal(t, int64(42), *id)
	assert.Equal(t, int64(42), pointer.Val(id))

	var missing *string
	assert.Equal(t, "", pointer.Val(missing))
}
