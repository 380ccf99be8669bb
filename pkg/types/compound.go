// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data and configuration types for the
// cheminformatics helper pipeline.
package types

import "time"

// Compound holds the retrieved properties of a single PubChem compound.
type Compound struct {
	// CID is the PubChem compound identifier.
	CID int `json:"cid" yaml:"cid"`

	// Properties maps property field names (as requested, e.g.
	// MolecularWeight) to their textual values as returned by the API.
	Properties map[string]string `json:"properties" yaml:"properties"`

	// RetrievedAt records when the compound row was stored locally.
	// Zero for compounds that came straight off the wire.
	RetrievedAt time.Time `json:"retrieved_at,omitempty" yaml:"retrieved_at,omitempty"`
}

// RetrievalReport is the metadata sidecar written next to a saved
// property CSV. It gives notebooks an out-of-band record of what was
// requested and which chunks need retrying.
type RetrievalReport struct {
	// Properties lists the requested property fields, in request order.
	Properties []string `json:"properties" yaml:"properties"`

	// CIDCount is the number of identifiers in the request.
	CIDCount int `json:"cid_count" yaml:"cid_count"`

	// ChunkSize is the number of CIDs per API request.
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// ChunkCount is ceil(CIDCount/ChunkSize).
	ChunkCount int `json:"chunk_count" yaml:"chunk_count"`

	// FailedChunks lists the indices of chunks whose request failed
	// after all retries. Empty on a clean run.
	FailedChunks []int `json:"failed_chunks,omitempty" yaml:"failed_chunks,omitempty"`

	// RetrievedAt is the completion time of the retrieval.
	RetrievedAt time.Time `json:"retrieved_at" yaml:"retrieved_at"`
}
