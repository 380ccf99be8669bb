// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubchem wraps the PubChem PUG-REST API: fast similarity and
// identity searches plus chunked batch property retrieval. All network
// calls go through the retrying transport in internal/httputil; this
// package never talks to the wire directly.
package pubchem

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rebelford/CheminformaticsPackage26/internal/httputil"
	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

// DefaultBaseURL is the production PUG-REST endpoint.
const DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// Client issues PUG-REST operations. Base is overridable so tests can
// substitute an httptest server.
type Client struct {
	Transport *httputil.Client
	Base      string
	Logger    zerolog.Logger
}

// NewClient builds a Client against the production endpoint.
func NewClient(cfg types.HTTPConfig, logger zerolog.Logger) *Client {
	return &Client{
		Transport: httputil.NewClient(cfg, logger),
		Base:      DefaultBaseURL,
		Logger:    logger,
	}
}

// parseCIDList converts whitespace-separated CID text (the txt output
// format of the search endpoints) into integers.
func parseCIDList(text string) ([]int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}

	cids := make([]int, 0, len(fields))
	for _, f := range fields {
		cid, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("parsing CID list: unexpected token %q", f)
		}
		cids = append(cids, cid)
	}
	return cids, nil
}
