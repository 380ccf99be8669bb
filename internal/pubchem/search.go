// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultThreshold is the Tanimoto similarity threshold for
	// similarity searches.
	DefaultThreshold = 90

	// DefaultIdentityType is the identity relationship used when the
	// caller does not pick one.
	DefaultIdentityType = "same_connectivity"
)

// Identity search HTTP methods. The endpoint's POST path is
// occasionally unstable upstream, so the GET variant is kept as an
// explicit fallback rather than folded into one code path: the two
// construct different URL and payload shapes.
const (
	MethodPost = "post"
	MethodGet  = "get"
)

// IdentityOptions selects the identity relationship and the HTTP method
// variant for FastIdentity.
type IdentityOptions struct {
	// IdentityType is e.g. same_connectivity, same_parent,
	// same_scaffold. Empty means DefaultIdentityType.
	IdentityType string

	// Method is MethodPost (default) or MethodGet.
	Method string
}

// FastSimilarity performs a 2D fast similarity search for a SMILES
// string and returns the matching CIDs. threshold is the Tanimoto
// similarity cutoff 0-100; values outside that range fall back to
// DefaultThreshold.
func (c *Client) FastSimilarity(ctx context.Context, smiles string, threshold int) ([]int, error) {
	if strings.TrimSpace(smiles) == "" {
		return nil, fmt.Errorf("empty SMILES query")
	}
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}

	reqURL := fmt.Sprintf("%s/compound/fastsimilarity_2d/smiles/cids/txt?smiles=%s&Threshold=%d",
		c.Base, url.QueryEscape(smiles), threshold)

	text, err := c.Transport.GetText(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	cids, err := parseCIDList(text)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return cids, nil
}

// FastIdentity performs a fast identity search for a SMILES string and
// returns the matching CIDs. The POST variant carries the SMILES in a
// JSON request body; the GET variant carries it URL-escaped in the
// query string.
func (c *Client) FastIdentity(ctx context.Context, smiles string, opts IdentityOptions) ([]int, error) {
	if strings.TrimSpace(smiles) == "" {
		return nil, fmt.Errorf("empty SMILES query")
	}

	identityType := opts.IdentityType
	if identityType == "" {
		identityType = DefaultIdentityType
	}
	method := strings.ToLower(opts.Method)
	if method == "" {
		method = MethodPost
	}

	var text string
	var err error

	switch method {
	case MethodGet:
		reqURL := fmt.Sprintf("%s/compound/fastidentity/smiles/cids/txt?smiles=%s&identity_type=%s",
			c.Base, url.QueryEscape(smiles), url.QueryEscape(identityType))
		text, err = c.Transport.GetText(ctx, reqURL)

	case MethodPost:
		reqURL := fmt.Sprintf("%s/compound/fastidentity/smiles/cids/txt?identity_type=%s",
			c.Base, url.QueryEscape(identityType))
		payload := map[string]string{"smiles": smiles}
		text, err = c.Transport.PostText(ctx, reqURL, payload)

	default:
		return nil, fmt.Errorf("unknown identity search method %q (want %q or %q)", opts.Method, MethodPost, MethodGet)
	}

	if err != nil {
		return nil, fmt.Errorf("identity search: %w", err)
	}

	cids, err := parseCIDList(text)
	if err != nil {
		return nil, fmt.Errorf("identity search: %w", err)
	}
	return cids, nil
}
