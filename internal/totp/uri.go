package totp

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedURI marks provisioning URIs this engine cannot parse.
var ErrMalformedURI = errors.New("totp: malformed provisioning uri")

const uriScheme = "totp://"

// BuildProvisioningURL serializes a credential as
// totp://<issuer>:<account>?secret=<base32>&issuer=<issuer>[...].
// Algorithm, digits and period are omitted when equal to the defaults.
func BuildProvisioningURL(issuer, account string, p Params) string {
	p = p.withDefaults()
	var sb strings.Builder
	sb.WriteString(uriScheme)
	sb.WriteString(url.PathEscape(issuer))
	sb.WriteByte(':')
	sb.WriteString(url.PathEscape(account))
	sb.WriteString("?secret=")
	sb.WriteString(p.Secret)
	sb.WriteString("&issuer=")
	sb.WriteString(url.QueryEscape(issuer))
	if p.Algorithm != AlgSHA1 {
		sb.WriteString("&algorithm=")
		sb.WriteString(string(p.Algorithm))
	}
	if p.Digits != DefaultDigits {
		sb.WriteString(fmt.Sprintf("&digits=%d", p.Digits))
	}
	if p.Period != DefaultPeriod {
		sb.WriteString(fmt.Sprintf("&period=%d", p.Period))
	}
	return sb.String()
}

// ParseProvisioningURL reverses BuildProvisioningURL. The label part is
// parsed by hand: the issuer:account authority is not a valid host:port, so
// net/url would reject the whole URI.
func ParseProvisioningURL(raw string) (issuer, account string, p Params, err error) {
	if !strings.HasPrefix(raw, uriScheme) {
		return "", "", Params{}, ErrMalformedURI
	}
	rest := raw[len(uriScheme):]

	label, query, found := strings.Cut(rest, "?")
	if !found {
		return "", "", Params{}, ErrMalformedURI
	}
	issuerPart, accountPart, found := strings.Cut(label, ":")
	if !found {
		return "", "", Params{}, ErrMalformedURI
	}
	issuer, err = url.PathUnescape(issuerPart)
	if err != nil {
		return "", "", Params{}, ErrMalformedURI
	}
	account, err = url.PathUnescape(accountPart)
	if err != nil {
		return "", "", Params{}, ErrMalformedURI
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", "", Params{}, ErrMalformedURI
	}
	secret := values.Get("secret")
	if secret == "" {
		return "", "", Params{}, ErrMalformedURI
	}
	if _, err := DecodeSecret(secret); err != nil {
		return "", "", Params{}, ErrMalformedURI
	}
	if qi := values.Get("issuer"); qi != "" {
		issuer = qi
	}

	p = Params{Secret: secret}
	if alg := values.Get("algorithm"); alg != "" {
		p.Algorithm = Algorithm(strings.ToUpper(alg))
	}
	if d := values.Get("digits"); d != "" {
		p.Digits, err = strconv.Atoi(d)
		if err != nil {
			return "", "", Params{}, ErrMalformedURI
		}
	}
	if per := values.Get("period"); per != "" {
		p.Period, err = strconv.Atoi(per)
		if err != nil {
			return "", "", Params{}, ErrMalformedURI
		}
	}
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return "", "", Params{}, ErrMalformedURI
	}
	return issuer, account, p, nil
}
