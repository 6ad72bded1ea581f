// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bundle contains the file format used to hand out shares. A bundle
// carries one or more shares of a single split together with the split ID,
// threshold and total, so that shares of different splits are not mixed up
// when combining.
package bundle

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/GoogleCloudPlatform/secretsharing/secrets"
	"github.com/GoogleCloudPlatform/secretsharing/shamir"
	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

// Bundle holds shares of one split secret.
type Bundle struct {
	// ID identifies the split the shares come from.
	ID        uuid.UUID
	Threshold int
	Total     int
	Shares    []secrets.Share
}

// file is the serialized form of a Bundle.
type file struct {
	ID        string `json:"id"`
	Threshold int    `json:"threshold"`
	Total     int    `json:"total"`
	// Shares are base64 encoded secrets.Share wire encodings.
	Shares []string `json:"shares"`
}

// New creates a bundle with a random ID for the shares of a new split.
func New(threshold, total int, shares []secrets.Share) (*Bundle, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate split ID: %v", err)
	}
	b := &Bundle{ID: id, Threshold: threshold, Total: total, Shares: shares}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) validate() error {
	if b.Threshold < 1 || b.Threshold > b.Total || b.Total > shamir.MaxShares {
		return fmt.Errorf("invalid bundle: threshold %d, total %d", b.Threshold, b.Total)
	}
	seen := make(map[byte]bool)
	for _, s := range b.Shares {
		if int(s.Index()) >= b.Total {
			return fmt.Errorf("invalid bundle: share index %d out of range for %d shares", s.Index(), b.Total)
		}
		if seen[s.Index()] {
			return fmt.Errorf("invalid bundle: duplicate share index %d", s.Index())
		}
		seen[s.Index()] = true
	}
	return nil
}

// Marshal serializes the bundle as YAML.
func (b *Bundle) Marshal() ([]byte, error) {
	f := file{
		ID:        b.ID.String(),
		Threshold: b.Threshold,
		Total:     b.Total,
		Shares:    make([]string, 0, len(b.Shares)),
	}
	for _, s := range b.Shares {
		enc, err := s.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode share %d: %v", s.Index(), err)
		}
		f.Shares = append(f.Shares, base64.StdEncoding.EncodeToString(enc))
	}
	return yaml.Marshal(f)
}

// Parse reads a bundle serialized by Marshal.
func Parse(data []byte) (*Bundle, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %v", err)
	}
	id, err := uuid.Parse(f.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid split ID %q: %v", f.ID, err)
	}
	b := &Bundle{ID: id, Threshold: f.Threshold, Total: f.Total}
	for i, encoded := range f.Shares {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode share %d: %v", i, err)
		}
		var s secrets.Share
		if err := s.UnmarshalBinary(raw); err != nil {
			return nil, fmt.Errorf("failed to decode share %d: %v", i, err)
		}
		b.Shares = append(b.Shares, s)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Split returns one bundle per share, for handing each share to a different holder.
func (b *Bundle) Split() []*Bundle {
	out := make([]*Bundle, 0, len(b.Shares))
	for _, s := range b.Shares {
		out = append(out, &Bundle{ID: b.ID, Threshold: b.Threshold, Total: b.Total, Shares: []secrets.Share{s}})
	}
	return out
}

// Merge combines bundles of the same split. A share present in several
// bundles is kept once; two different shares with the same index are an error.
func Merge(bundles ...*Bundle) (*Bundle, error) {
	if len(bundles) == 0 {
		return nil, fmt.Errorf("no bundles provided")
	}
	first := bundles[0]
	merged := &Bundle{ID: first.ID, Threshold: first.Threshold, Total: first.Total}
	byIndex := make(map[byte]secrets.Share)
	for _, b := range bundles {
		if b.ID != first.ID {
			return nil, fmt.Errorf("bundles belong to different splits: %v and %v", first.ID, b.ID)
		}
		if b.Threshold != first.Threshold || b.Total != first.Total {
			return nil, fmt.Errorf("bundles of split %v disagree on threshold/total: %d/%d and %d/%d", b.ID, first.Threshold, first.Total, b.Threshold, b.Total)
		}
		for _, s := range b.Shares {
			prev, ok := byIndex[s.Index()]
			if !ok {
				byIndex[s.Index()] = s
				continue
			}
			if !bytes.Equal(prev.Values(), s.Values()) {
				return nil, fmt.Errorf("conflicting values for share %d of split %v", s.Index(), b.ID)
			}
		}
	}
	for _, s := range byIndex {
		merged.Shares = append(merged.Shares, s)
	}
	sort.Slice(merged.Shares, func(i, j int) bool { return merged.Shares[i].Index() < merged.Shares[j].Index() })
	return merged, nil
}

// Recover reconstitutes the secret from the shares in the bundle. Note that
// this does not guarantee the shares are correct, only that there are enough
// of them.
func (b *Bundle) Recover() ([]byte, error) {
	if len(b.Shares) < b.Threshold {
		return nil, fmt.Errorf("only %d shares available, which is fewer than threshold of %d", len(b.Shares), b.Threshold)
	}
	return shamir.RecoverSecret(b.Shares)
}
