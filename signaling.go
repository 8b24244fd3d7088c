// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"strings"
)

// Signaling abstracts the out-of-band, ordered, text-framed channel a
// Session uses to exchange AUTH/DESC/CAND/READY/CONNECTED frames with
// one server endpoint before any data channel exists. Production
// callers typically carry frames over a WebSocket or similar
// always-open transport; tests use [NewMemorySignalingPair].
//
// Frames arrive via OnFrame; Send pushes one frame to the peer. Close
// tears down the underlying transport. Implementations must deliver
// frames in the order they were sent and must be safe to Close from
// any goroutine.
type Signaling interface {
	Send(ctx context.Context, frame string) error
	OnFrame(func(frame string)) Connection
	OnClosed(func()) Connection
	Close() error
}

// Connection is the narrow handle Signaling returns from its
// subscription methods; it matches [github.com/pomelo-net/pomelo-udp-webrtc/lib/signal.Connection]'s
// shape without committing Signaling implementations to that generic
// type.
type Connection interface {
	Disconnect()
}

const signalingFieldSeparator = "|"

// frameType identifies the five signaling frame kinds exchanged during
// a session's handshake.
type frameType string

const (
	frameAuth      frameType = "AUTH"
	frameDesc      frameType = "DESC"
	frameCandidate frameType = "CAND"
	frameReady     frameType = "READY"
	frameConnected frameType = "CONNECTED"
)

var errMalformedFrame = errors.New("client: malformed signaling frame")

// encodeFrame joins a frame type and its fields with the wire
// separator, e.g. encodeFrame(frameDesc, "answer", sdp) -> "DESC|answer|<sdp>".
func encodeFrame(kind frameType, fields ...string) string {
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, string(kind))
	parts = append(parts, fields...)
	return strings.Join(parts, signalingFieldSeparator)
}

// parseFrame splits a raw frame into its type and fields. Fields after
// the type are not limited in count or content (an SDP body, the last
// field of a DESC frame, may itself contain "|").
func parseFrame(raw string) (kind frameType, fields []string, err error) {
	parts := strings.SplitN(raw, signalingFieldSeparator, 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", nil, errMalformedFrame
	}
	kind = frameType(parts[0])
	if len(parts) == 1 {
		return kind, nil, nil
	}
	switch kind {
	case frameDesc, frameCandidate:
		// The trailing field (SDP or candidate string) may itself
		// contain the separator; split it off whole rather than
		// recursively splitting.
		fields = splitFrameFields(parts[1], kind)
	case frameAuth:
		fields = strings.Split(parts[1], signalingFieldSeparator)
	default:
		fields = strings.Split(parts[1], signalingFieldSeparator)
	}
	return kind, fields, nil
}

// splitFrameFields splits the remainder of a DESC or CAND frame into
// its leading tag field(s) plus one trailing opaque payload field.
func splitFrameFields(remainder string, kind frameType) []string {
	switch kind {
	case frameDesc:
		// DESC|<type>|<sdp>
		parts := strings.SplitN(remainder, signalingFieldSeparator, 2)
		return parts
	case frameCandidate:
		// CAND|<mid>|<candidate>
		parts := strings.SplitN(remainder, signalingFieldSeparator, 2)
		return parts
	default:
		return strings.Split(remainder, signalingFieldSeparator)
	}
}
