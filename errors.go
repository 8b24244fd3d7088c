// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "errors"

// ErrInvalidToken is wrapped by every error DecodeToken returns. Use
// errors.Is(err, ErrInvalidToken) to distinguish token decode failures
// from other errors.
var ErrInvalidToken = errors.New("client: invalid connect token")

// ErrTransport wraps failures from the signaling transport or the peer
// connection layer that force a session to close. These are
// deterministic, terminal failures, not codec-level errors.
var ErrTransport = errors.New("client: transport failure")
