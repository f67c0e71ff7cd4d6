package token

import "fmt"

// RoleClaimKind discriminates the two tolerated shapes of a roles-claim
// element.
type RoleClaimKind int

const (
	// RoleClaimPlain is a bare authority string.
	RoleClaimPlain RoleClaimKind = iota
	// RoleClaimStructured is an object carrying the authority under "name".
	RoleClaimStructured
)

// RoleClaim is one element of the roles claim.
type RoleClaim struct {
	Kind RoleClaimKind
	Name string
}

// DecodeRoleClaim resolves a single roles-claim element. Tokens minted by
// older issuers serialize role objects instead of strings; those are accepted
// when they carry a name field.
func DecodeRoleClaim(v any) (RoleClaim, error) {
	switch t := v.(type) {
	case string:
		return RoleClaim{Kind: RoleClaimPlain, Name: t}, nil
	case map[string]any:
		name, ok := t["name"].(string)
		if !ok || name == "" {
			return RoleClaim{}, fmt.Errorf("%w: role object without name", ErrClaimsFormat)
		}
		return RoleClaim{Kind: RoleClaimStructured, Name: name}, nil
	default:
		return RoleClaim{}, fmt.Errorf("%w: unsupported roles element %T", ErrClaimsFormat, v)
	}
}

// ExtractRoles reads the roles claim as an ordered authority list.
func ExtractRoles(claims Claims) ([]string, error) {
	raw, ok := claims["roles"]
	if !ok {
		return nil, fmt.Errorf("%w: roles claim absent", ErrClaimsFormat)
	}
	elements, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: roles claim is not a sequence", ErrClaimsFormat)
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		rc, err := DecodeRoleClaim(el)
		if err != nil {
			return nil, err
		}
		out = append(out, rc.Name)
	}
	return out, nil
}

// ExtractSubject returns the sub claim, or the empty string when absent.
func ExtractSubject(claims Claims) string {
	sub, _ := claims["sub"].(string)
	return sub
}

// ExtractClaim returns the raw claim value; absence is not an error.
func ExtractClaim(claims Claims, key string) (any, bool) {
	v, ok := claims[key]
	return v, ok
}

// ExtractString returns a string-typed claim, reporting absence or a
// non-string value as not found.
func ExtractString(claims Claims, key string) (string, bool) {
	v, ok := claims[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
