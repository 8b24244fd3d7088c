// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import "errors"

// ErrOverflow is returned when a write would advance the cursor past
// the buffer's capacity.
var ErrOverflow = errors.New("payload: write overflows buffer capacity")

// ErrUnderflow is returned when a read would advance the cursor past
// the buffer's capacity.
var ErrUnderflow = errors.New("payload: read underflows remaining buffer")
