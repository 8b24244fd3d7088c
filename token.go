// Copyright 2026 The Pomelo Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pomelo-net/pomelo-udp-webrtc/lib/payload"
)

// TokenSize is the fixed length, in bytes, of the public portion of a
// connect token.
const TokenSize = 2048

// addressTypeIPv4 and addressTypeIPv6 are the server address type tags
// that precede each entry in a token's address list.
const (
	addressTypeIPv4 = 1
	addressTypeIPv6 = 2
)

// ServerAddress is a decoded endpoint from a connect token's address
// list: either an IPv4 dotted-quad or an IPv6 address, paired with a
// port.
type ServerAddress struct {
	Host string
	Port uint16
}

// String returns the address in "host:port" form.
func (a ServerAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

// ConnectToken is the decoded public portion of a connect token. The
// private, encrypted portion (PrivateData) is opaque to the client; it
// is relayed verbatim to the server during signaling and decrypted
// there.
type ConnectToken struct {
	Version           string
	ProtocolID        uint64
	CreateTimestamp   uint64
	ExpireTimestamp   uint64
	Nonce             [24]byte
	PrivateData       [1024]byte
	Timeout           int32
	ServerAddresses   []ServerAddress
	ClientToServerKey [32]byte
	ServerToClientKey [32]byte
}

// DecodeToken parses a connect token from its transport form: either
// the raw 2048-byte layout, or a URL-safe base64 encoding of those
// bytes using the token's own alphabet variant ('_' in place of '/',
// '-' in place of '+'). Any other input is a fatal InvalidToken error.
func DecodeToken(input []byte) (*ConnectToken, error) {
	raw, err := TokenBytes(input)
	if err != nil {
		return nil, err
	}
	return decodeTokenLayout(raw)
}

// TokenBytes normalizes a token's transport form (raw 2048 bytes, or
// the token alphabet's base64 encoding of them) into its raw
// 2048-byte representation, the form EncodeToken expects.
func TokenBytes(input []byte) ([]byte, error) {
	raw, err := tokenBytes(input)
	if err != nil {
		return nil, err
	}
	if len(raw) != TokenSize {
		return nil, fmt.Errorf("%w: decoded length %d, want %d", ErrInvalidToken, len(raw), TokenSize)
	}
	return raw, nil
}

// EncodeToken renders the raw 2048-byte public token layout as its
// wire transport form: standard base64 with '/' and '+' remapped to
// '_' and '-'. This is the form sent verbatim in a session's AUTH
// frame.
func EncodeToken(raw []byte) string {
	encoded := base64.StdEncoding.EncodeToString(raw)
	return strings.NewReplacer("/", "_", "+", "-").Replace(encoded)
}

// tokenBytes normalizes the transport form of a token into its raw
// 2048-byte representation.
func tokenBytes(input []byte) ([]byte, error) {
	if len(input) == TokenSize {
		return input, nil
	}

	text := string(input)
	text = strings.Map(func(r rune) rune {
		switch r {
		case '_':
			return '/'
		case '-':
			return '+'
		default:
			return r
		}
	}, text)

	if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(text); err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("%w: input is neither %d raw bytes nor valid base64", ErrInvalidToken, TokenSize)
}

// decodeTokenLayout parses the 2048-byte public token layout strictly
// in field order.
func decodeTokenLayout(raw []byte) (*ConnectToken, error) {
	p := payload.New(0)
	p.PrepareBuffer(raw)

	token := &ConnectToken{}
	token.Version = p.ReadString()

	var err error
	if token.ProtocolID, err = p.ReadUint64(); err != nil {
		return nil, wrapTokenErr("protocol id", err)
	}
	if token.CreateTimestamp, err = p.ReadUint64(); err != nil {
		return nil, wrapTokenErr("create timestamp", err)
	}
	if token.ExpireTimestamp, err = p.ReadUint64(); err != nil {
		return nil, wrapTokenErr("expire timestamp", err)
	}

	nonce, err := p.Read(len(token.Nonce))
	if err != nil {
		return nil, wrapTokenErr("nonce", err)
	}
	copy(token.Nonce[:], nonce)

	private, err := p.Read(len(token.PrivateData))
	if err != nil {
		return nil, wrapTokenErr("private data", err)
	}
	copy(token.PrivateData[:], private)

	if token.Timeout, err = p.ReadInt32(); err != nil {
		return nil, wrapTokenErr("timeout", err)
	}

	count, err := p.ReadUint32()
	if err != nil {
		return nil, wrapTokenErr("server address count", err)
	}
	if count < 1 || count > 32 {
		return nil, fmt.Errorf("%w: server address count %d out of range [1, 32]", ErrInvalidToken, count)
	}

	token.ServerAddresses = make([]ServerAddress, 0, count)
	for i := uint32(0); i < count; i++ {
		addr, err := decodeServerAddress(p)
		if err != nil {
			return nil, wrapTokenErr(fmt.Sprintf("server address %d", i), err)
		}
		token.ServerAddresses = append(token.ServerAddresses, addr)
	}

	clientToServer, err := p.Read(len(token.ClientToServerKey))
	if err != nil {
		return nil, wrapTokenErr("client-to-server key", err)
	}
	copy(token.ClientToServerKey[:], clientToServer)

	serverToClient, err := p.Read(len(token.ServerToClientKey))
	if err != nil {
		return nil, wrapTokenErr("server-to-client key", err)
	}
	copy(token.ServerToClientKey[:], serverToClient)

	return token, nil
}

// decodeServerAddress reads one tagged address entry. Unknown type
// tags fail fast rather than silently desynchronizing the cursor.
func decodeServerAddress(p *payload.Payload) (ServerAddress, error) {
	tag, err := p.ReadUint8()
	if err != nil {
		return ServerAddress{}, err
	}

	switch tag {
	case addressTypeIPv4:
		octets, err := p.Read(4)
		if err != nil {
			return ServerAddress{}, err
		}
		port, err := p.ReadUint16()
		if err != nil {
			return ServerAddress{}, err
		}
		host := fmt.Sprintf("%d.%d.%d.%d", octets[0], octets[1], octets[2], octets[3])
		return ServerAddress{Host: host, Port: port}, nil

	case addressTypeIPv6:
		groups := make([]string, 8)
		for i := range groups {
			g, err := p.ReadUint16()
			if err != nil {
				return ServerAddress{}, err
			}
			groups[i] = strconv.FormatUint(uint64(g), 16)
		}
		port, err := p.ReadUint16()
		if err != nil {
			return ServerAddress{}, err
		}
		return ServerAddress{Host: strings.Join(groups, ":"), Port: port}, nil

	default:
		return ServerAddress{}, fmt.Errorf("%w: unknown server address type tag %d", ErrInvalidToken, tag)
	}
}

func wrapTokenErr(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidToken, field, err)
}
