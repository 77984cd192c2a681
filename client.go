// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

// Package opcua is a high-level OPC-UA client: it dials a uacp.Conn, opens
// a uasc.SecureChannel over it, and creates and activates a session.
package opcua

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vwopcua/opcua/ua"
	"github.com/vwopcua/opcua/uacp"
	"github.com/vwopcua/opcua/uapolicy"
	"github.com/vwopcua/opcua/uasc"
)

// GetEndpoints dials endpoint just long enough to retrieve the endpoint
// descriptions it exposes, then disconnects.
func GetEndpoints(endpoint string) ([]ua.EndpointDescription, error) {
	c := NewClient(endpoint)
	if err := c.Dial(context.Background()); err != nil {
		return nil, err
	}
	defer c.Close()
	res, err := c.GetEndpoints()
	if err != nil {
		return nil, err
	}
	return res.Endpoints, nil
}

// Client is a high-level client for an OPC-UA server. It establishes a
// secure channel and a session.
type Client struct {
	endpointURL string

	netCfg     *uacp.Config
	cfg        *uasc.Config
	sessionCfg *uasc.SessionConfig
	ctx        *ua.Context

	sechan *uasc.SecureChannel

	session atomic.Value // *Session
	once    sync.Once

	subsMu        sync.Mutex
	subscriptions map[uint32]*Subscription
}

// NewClient creates a new Client.
//
// When no options are provided the new client is created from
// uacp.DefaultConfig, uasc.DefaultClientConfig and uasc.DefaultSessionConfig.
// If no authentication method is configured, CreateSession sets an
// anonymous UserIdentityToken using the PolicyID the server advertised.
//
// See Option for the available configuration knobs.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpointURL: endpoint,
		netCfg:      uacp.DefaultConfig(),
		cfg:         uasc.DefaultClientConfig(),
		sessionCfg:  uasc.DefaultSessionConfig(),
		ctx:           ua.NewContext(nil, ua.DefaultDecodingLimits()),
		subscriptions: make(map[uint32]*Subscription),
	}
	ua.RegisterNotificationLoader(c.ctx)
	for _, opt := range opts {
		opt(c.netCfg, c.cfg, c.sessionCfg)
	}
	return c
}

// Connect establishes a secure channel and creates and activates a session.
func (c *Client) Connect(ctx context.Context) error {
	if c.sechan != nil {
		return fmt.Errorf("opcua: already connected")
	}
	if err := c.Dial(ctx); err != nil {
		return err
	}
	s, err := c.CreateSession(c.sessionCfg)
	if err != nil {
		_ = c.Close()
		return err
	}
	if err := c.ActivateSession(s); err != nil {
		_ = c.Close()
		return err
	}
	return nil
}

// Dial establishes a secure channel without creating a session.
func (c *Client) Dial(ctx context.Context) error {
	c.once.Do(func() { c.session.Store((*Session)(nil)) })
	if c.sechan != nil {
		return fmt.Errorf("opcua: secure channel already connected")
	}
	conn, err := uacp.Dial(ctx, c.endpointURL, c.netCfg)
	if err != nil {
		return err
	}
	sechan, err := uasc.NewSecureChannel(c.endpointURL, conn, c.cfg, c.ctx)
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := sechan.Open(ctx); err != nil {
		_ = conn.Close()
		return err
	}
	c.sechan = sechan
	return nil
}

// Close closes the session and the secure channel.
func (c *Client) Close() error {
	_ = c.CloseSession()
	return c.sechan.Close()
}

// Session returns the active session, or nil if none is active.
func (c *Client) Session() *Session {
	s, _ := c.session.Load().(*Session)
	return s
}

// Session is an OPC-UA session as described in Part 4, 5.6.
type Session struct {
	cfg *uasc.SessionConfig

	// resp is the response to the CreateSession request, carrying everything
	// needed to activate the session.
	resp *ua.CreateSessionResponse

	serverCertificate []byte
	serverNonce       []byte
}

// CreateSession creates a new session which is not yet activated and not
// associated with the client. Call ActivateSession to both activate and
// associate it.
//
// See Part 4, 5.6.2.
func (c *Client) CreateSession(cfg *uasc.SessionConfig) (*Session, error) {
	if c.sechan == nil {
		return nil, fmt.Errorf("opcua: secure channel not connected")
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	req := &ua.CreateSessionRequest{
		ClientDescription:       cfg.ClientDescription,
		EndpointURL:             ua.NewString(c.endpointURL),
		SessionName:             ua.NewString(fmt.Sprintf("vwopcua-%d", time.Now().UnixNano())),
		ClientNonce:             ua.NewByteString(nonce),
		ClientCertificate:       ua.NewByteString(c.cfg.LocalCertificate),
		RequestedSessionTimeout: float64(cfg.SessionTimeout / time.Millisecond),
	}

	var s *Session
	// CreateSessionRequest always carries a nil auth token; use SendRequest
	// directly to avoid Send's current-session lookup.
	err := c.sechan.SendRequest(req, nil, func(v interface{}) error {
		var res *ua.CreateSessionResponse
		if err := safeAssign(v, &res); err != nil {
			return err
		}

		if err := c.sechan.VerifySessionSignature(res.ServerCertificate.Value(), nonce, res.ServerSignature.Signature.Value()); err != nil {
			log.Printf("opcua: error verifying session signature: %s", err)
		}

		if c.sessionCfg.UserIdentityToken == nil {
			AuthAnonymous()(c.netCfg, c.cfg, c.sessionCfg)
			AuthPolicyID(anonymousPolicyID(res.ServerEndpoints))(c.netCfg, c.cfg, c.sessionCfg)
		}

		s = &Session{
			cfg:               cfg,
			resp:              res,
			serverNonce:       res.ServerNonce.Value(),
			serverCertificate: res.ServerCertificate.Value(),
		}
		return nil
	})
	return s, err
}

const defaultAnonymousPolicyID = "Anonymous"

func anonymousPolicyID(endpoints []ua.EndpointDescription) string {
	for _, e := range endpoints {
		if e.SecurityMode != ua.MessageSecurityModeNone || e.SecurityPolicyURI.Value() != string(uapolicy.URINone) {
			continue
		}
		for _, t := range e.UserIdentityTokens {
			if t.TokenType == ua.UserTokenTypeAnonymous {
				return t.PolicyID.Value()
			}
		}
	}
	return defaultAnonymousPolicyID
}

// ActivateSession activates the session and associates it with the client.
// Once the server accepts the activation, any session the client already
// has is closed and replaced by s. Call DetachSession beforehand to retain
// the current session instead.
//
// See Part 4, 5.6.3.
func (c *Client) ActivateSession(s *Session) error {
	sig, sigAlg, err := c.sechan.NewSessionSignature(s.serverCertificate, s.serverNonce)
	if err != nil {
		return fmt.Errorf("opcua: error creating session signature: %w", err)
	}

	switch tok := s.cfg.UserIdentityToken.(type) {
	case *ua.AnonymousIdentityToken:
		// nothing to do

	case *ua.UserNameIdentityToken:
		pass, passAlg, err := c.sechan.EncryptUserPassword(s.cfg.AuthPolicyURI, s.cfg.AuthPassword, s.serverCertificate, s.serverNonce)
		if err != nil {
			return fmt.Errorf("opcua: error encrypting user password: %w", err)
		}
		tok.Password = ua.NewByteString(pass)
		tok.EncryptionAlgorithm = ua.NewString(passAlg)

	case *ua.X509IdentityToken:
		tokSig, tokSigAlg, err := c.sechan.NewUserTokenSignature(s.cfg.AuthPolicyURI, s.serverCertificate, s.serverNonce)
		if err != nil {
			return fmt.Errorf("opcua: error creating user token signature: %w", err)
		}
		s.cfg.UserTokenSignature = &ua.SignatureData{
			Algorithm: ua.NewString(tokSigAlg),
			Signature: ua.NewByteString(tokSig),
		}

	case *ua.IssuedIdentityToken:
		tok.EncryptionAlgorithm = ua.NullString()
	}

	tok, err := s.cfg.UserIdentityToken.Encode()
	if err != nil {
		return fmt.Errorf("opcua: error encoding identity token: %w", err)
	}

	userTokenSig := ua.SignatureData{}
	if s.cfg.UserTokenSignature != nil {
		userTokenSig = *s.cfg.UserTokenSignature
	}

	req := &ua.ActivateSessionRequest{
		ClientSignature: ua.SignatureData{
			Algorithm: ua.NewString(sigAlg),
			Signature: ua.NewByteString(sig),
		},
		LocaleIDs:          s.cfg.LocaleIDs,
		UserIdentityToken:  tok,
		UserTokenSignature: userTokenSig,
	}
	return c.sechan.SendRequest(req, s.resp.AuthenticationToken, func(v interface{}) error {
		var res *ua.ActivateSessionResponse
		if err := safeAssign(v, &res); err != nil {
			return err
		}
		s.serverNonce = res.ServerNonce.Value()

		if err := c.CloseSession(); err != nil {
			_ = c.closeSession(s)
			return err
		}
		c.session.Store(s)
		return nil
	})
}

// CloseSession closes the current session.
//
// See Part 4, 5.6.4.
func (c *Client) CloseSession() error {
	if err := c.closeSession(c.Session()); err != nil {
		return err
	}
	c.session.Store((*Session)(nil))
	return nil
}

func (c *Client) closeSession(s *Session) error {
	if s == nil {
		return nil
	}
	req := &ua.CloseSessionRequest{DeleteSubscriptions: true}
	var res *ua.CloseSessionResponse
	return c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
}

// DetachSession removes the session from the client without closing it. The
// caller is responsible for closing or re-activating it. If the client has
// no active session this returns (nil, nil).
func (c *Client) DetachSession() (*Session, error) {
	s := c.Session()
	c.session.Store((*Session)(nil))
	return s, nil
}

// Send sends the request via the secure channel and invokes h with the
// response. If the client has an active session its authentication token
// is attached automatically.
func (c *Client) Send(req ua.Request, h func(interface{}) error) error {
	var authToken *ua.NodeID
	if s := c.Session(); s != nil {
		authToken = s.resp.AuthenticationToken
	}
	return c.sechan.SendRequest(req, authToken, h)
}

// Node returns a node object which accesses its attributes through this
// client connection.
func (c *Client) Node(id *ua.NodeID) *Node {
	return &Node{ID: id, c: c}
}

// GetEndpoints asks the server which endpoints it exposes (Part 4, 5.4.4).
func (c *Client) GetEndpoints() (*ua.GetEndpointsResponse, error) {
	req := &ua.GetEndpointsRequest{EndpointURL: ua.NewString(c.endpointURL)}
	var res *ua.GetEndpointsResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// Read executes a synchronous read request. By default it requests the
// Value attribute in the server's default encoding.
func (c *Client) Read(req *ua.ReadRequest) (*ua.ReadResponse, error) {
	rvs := make([]ua.ReadValueID, len(req.NodesToRead))
	for i, rv := range req.NodesToRead {
		rc := rv
		if rc.AttributeID == 0 {
			rc.AttributeID = ua.AttributeIDValue
		}
		rvs[i] = rc
	}
	req = &ua.ReadRequest{
		MaxAge:             req.MaxAge,
		TimestampsToReturn: req.TimestampsToReturn,
		NodesToRead:        rvs,
	}

	var res *ua.ReadResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// Write executes a synchronous write request.
func (c *Client) Write(req *ua.WriteRequest) (*ua.WriteResponse, error) {
	var res *ua.WriteResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// Browse executes a synchronous browse request.
func (c *Client) Browse(req *ua.BrowseRequest) (*ua.BrowseResponse, error) {
	var res *ua.BrowseResponse
	err := c.Send(req, func(v interface{}) error {
		return safeAssign(v, &res)
	})
	return res, err
}

// safeAssign implements a type-safe assign from T to *T.
func safeAssign(t, ptrT interface{}) error {
	if reflect.TypeOf(t) != reflect.TypeOf(ptrT).Elem() {
		return InvalidResponseTypeError{t, ptrT}
	}
	reflect.ValueOf(ptrT).Elem().Set(reflect.ValueOf(t))
	return nil
}

// InvalidResponseTypeError is returned by safeAssign when a response does
// not match the type the caller expected.
type InvalidResponseTypeError struct {
	got, want interface{}
}

func (e InvalidResponseTypeError) Error() string {
	return fmt.Sprintf("opcua: invalid response: got %T want %T", e.got, e.want)
}
