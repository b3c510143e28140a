// Package spnego decodes the SPNEGO token an SMB2 server places in the
// security buffer of its NEGOTIATE response.
//
// The token lists the authentication mechanisms the server accepts, in its
// order of preference. Decoding goes through github.com/jcmturner/gokrb5/v8/spnego.
// Windows and Samba servers send the NegTokenInit2 variant ([MS-SPNG] 2.2.1),
// whose negHints field gokrb5 does not model; that part is decoded with the
// gofork ASN.1 package, which also serves tokens gokrb5 rejects.
package spnego

import (
	"errors"
	"fmt"

	"github.com/jcmturner/gofork/encoding/asn1"
	"github.com/jcmturner/gokrb5/v8/spnego"
)

// Well-known mechanism OIDs offered in SMB2 NEGOTIATE responses.
var (
	// OIDMSKerberosV5 is Microsoft's Kerberos 5 OID (1.2.840.48018.1.2.2).
	OIDMSKerberosV5 = asn1.ObjectIdentifier{1, 2, 840, 48018, 1, 2, 2}

	// OIDKerberosV5 is the standard Kerberos 5 OID (1.2.840.113554.1.2.2).
	OIDKerberosV5 = asn1.ObjectIdentifier{1, 2, 840, 113554, 1, 2, 2}

	// OIDKerberosUser2User is Kerberos user-to-user (1.2.840.113554.1.2.2.3).
	OIDKerberosUser2User = asn1.ObjectIdentifier{1, 2, 840, 113554, 1, 2, 2, 3}

	// OIDNTLMSSP is the NTLM Security Support Provider OID (1.3.6.1.4.1.311.2.2.10).
	OIDNTLMSSP = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 10}

	// OIDNegoEx is the extended negotiation mechanism (1.3.6.1.4.1.311.2.2.30).
	OIDNegoEx = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 30}

	// OIDSPNEGO identifies the outer GSS-API wrapper (1.3.6.1.5.5.2).
	OIDSPNEGO = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 2}
)

// Error types for token parsing.
var (
	ErrEmptyToken   = errors.New("spnego: empty token")
	ErrInvalidToken = errors.New("spnego: invalid token format")
	ErrNotInit      = errors.New("spnego: not a NegTokenInit")
)

// gssHeaderTag is [APPLICATION 0] constructed.
const gssHeaderTag = 0x60

var mechNames = []struct {
	oid  asn1.ObjectIdentifier
	name string
}{
	{OIDMSKerberosV5, "MS-KRB5"},
	{OIDKerberosV5, "KRB5"},
	{OIDKerberosUser2User, "KRB5-U2U"},
	{OIDNTLMSSP, "NTLMSSP"},
	{OIDNegoEx, "NEGOEX"},
}

// InitToken is a decoded NegTokenInit.
type InitToken struct {
	// MechTypes lists the offered mechanisms, most preferred first.
	MechTypes []asn1.ObjectIdentifier

	// HintName is the negHints principal of a NegTokenInit2, if any.
	// Windows sends the fixed "not_defined_in_RFC4178@please_ignore".
	HintName string
}

// negTokenInit2 is NegTokenInit with the Microsoft negHints extension.
type negTokenInit2 struct {
	MechTypes   []asn1.ObjectIdentifier `asn1:"explicit,tag:0"`
	ReqFlags    asn1.BitString          `asn1:"explicit,optional,tag:1"`
	MechToken   []byte                  `asn1:"explicit,optional,tag:2"`
	NegHints    negHints                `asn1:"explicit,optional,tag:3"`
	MechListMIC []byte                  `asn1:"explicit,optional,tag:4"`
}

type negHints struct {
	HintName    string `asn1:"generalstring,explicit,optional,tag:0"`
	HintAddress []byte `asn1:"explicit,optional,tag:1"`
}

// ParseInit decodes a GSS-API wrapped NegTokenInit or NegTokenInit2.
func ParseInit(data []byte) (*InitToken, error) {
	if len(data) == 0 {
		return nil, ErrEmptyToken
	}

	init2, err2 := parseInit2(data)

	var tok spnego.SPNEGOToken
	if err := tok.Unmarshal(data); err != nil {
		if err2 == nil {
			return init2, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Init {
		return nil, ErrNotInit
	}

	t := &InitToken{MechTypes: tok.NegTokenInit.MechTypes}
	if err2 == nil {
		t.HintName = init2.HintName
	}
	return t, nil
}

func parseInit2(data []byte) (*InitToken, error) {
	// InitialContextToken ::= [APPLICATION 0] IMPLICIT SEQUENCE {
	//     thisMech MechType, innerContextToken ANY }
	if data[0] != gssHeaderTag {
		return nil, fmt.Errorf("%w: missing GSS-API header", ErrInvalidToken)
	}
	var outer asn1.RawValue
	if _, err := asn1.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var mech asn1.ObjectIdentifier
	inner, err := asn1.Unmarshal(outer.Bytes, &mech)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !mech.Equal(OIDSPNEGO) {
		return nil, fmt.Errorf("%w: mechanism %s is not SPNEGO", ErrInvalidToken, mech)
	}

	var init negTokenInit2
	if _, err := asn1.UnmarshalWithParams(inner, &init, "explicit,tag:0"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInit, err)
	}

	return &InitToken{MechTypes: init.MechTypes, HintName: init.NegHints.HintName}, nil
}

// Mechanisms returns display names for the offered mechanisms. Unknown
// OIDs are shown in dotted form.
func (t *InitToken) Mechanisms() []string {
	names := make([]string, 0, len(t.MechTypes))
	for _, oid := range t.MechTypes {
		names = append(names, MechanismName(oid))
	}
	return names
}

// HasMechanism reports whether the token offers oid.
func (t *InitToken) HasMechanism(oid asn1.ObjectIdentifier) bool {
	for _, mech := range t.MechTypes {
		if mech.Equal(oid) {
			return true
		}
	}
	return false
}

// HasNTLM reports whether NTLM is offered.
func (t *InitToken) HasNTLM() bool {
	return t.HasMechanism(OIDNTLMSSP)
}

// HasKerberos reports whether either Kerberos OID is offered.
func (t *InitToken) HasKerberos() bool {
	return t.HasMechanism(OIDKerberosV5) || t.HasMechanism(OIDMSKerberosV5)
}

// MechanismName returns the short name of a mechanism OID.
func MechanismName(oid asn1.ObjectIdentifier) string {
	for _, m := range mechNames {
		if m.oid.Equal(oid) {
			return m.name
		}
	}
	return oid.String()
}
