package lightning

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const PreimageSize = 32

// Preimage is the secret behind a hold invoice payment hash.
type Preimage [PreimageSize]byte

func (p Preimage) String() string {
	return hex.EncodeToString(p[:])
}

// GetPreimage returns a random Preimage
func GetPreimage() (Preimage, error) {
	var preimage Preimage

	if _, err := rand.Read(preimage[:]); err != nil {
		return preimage, err
	}
	return preimage, nil
}

// MakePreimageFromStr parses a hex secret as handed back to settle a hold
// invoice.
func MakePreimageFromStr(secret string) (Preimage, error) {
	if len(secret) != PreimageSize*2 {
		return Preimage{}, fmt.Errorf("invalid secret length of %v, "+
			"want %v", len(secret), PreimageSize*2)
	}

	b, err := hex.DecodeString(secret)
	if err != nil {
		return Preimage{}, err
	}

	var preimage Preimage
	copy(preimage[:], b)
	return preimage, nil
}

func (p *Preimage) Hash() Hash {
	return Hash(sha256.Sum256(p[:]))
}

const HashSize = 32

// Hash is a payment hash.
type Hash [HashSize]byte

func (hash Hash) String() string {
	return hex.EncodeToString(hash[:])
}
