// Package fingerprint derives the deduplication key of a posting.
//
// The digest covers company name, title and location, concatenated in that
// order with their exact values. Posted date, URL and description are not
// part of it. No case folding or trimming is applied, so "Acme Inc." and
// "ACME INC." are two different companies.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"internship-scraper/internal/domain"
)

const Size = md5.Size

type Digest [Size]byte

// Of is total: empty strings are valid input.
func Of(company, title, location string) Digest {
	h := md5.New()
	h.Write([]byte(company))
	h.Write([]byte(title))
	h.Write([]byte(location))

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func OfRecord(j domain.JobRecord) Digest {
	return Of(j.CompanyName, j.Title, j.Location)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Parse reads the 32-char hex form produced by String.
func Parse(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("parse fingerprint %q: %w", s, err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("parse fingerprint %q: want %d bytes, got %d", s, Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Digest) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = p
	return nil
}
