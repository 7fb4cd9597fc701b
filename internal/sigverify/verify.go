// Package sigverify reconstructs score-submission challenge messages and
// recovers the signing wallet address from personal-message signatures.
package sigverify

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arenahub/arenahub-backend/internal/errs"
)

// ChallengeMessage is the exact byte string a wallet signs for a
// submission: "Submit score: {score} at {timestamp}", both numbers in
// canonical base-10 form.
func ChallengeMessage(score, timestamp int64) string {
	return "Submit score: " + strconv.FormatInt(score, 10) +
		" at " + strconv.FormatInt(timestamp, 10)
}

// Verify reports whether signature over the challenge for (score,
// timestamp) was produced by the claimed address. A signature that cannot
// be decoded or recovered fails with errs.ErrInvalidSignatureFormat; a
// clean recovery of a different address is verdict false with no error.
// Address comparison is case-insensitive. No I/O.
func Verify(claimed string, score, timestamp int64, signature string) (bool, error) {
	recovered, err := RecoverAddress(ChallengeMessage(score, timestamp), signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered.Hex(), strings.TrimSpace(claimed)), nil
}

// RecoverAddress recovers the signer of a personal-sign signature
// (hex, with or without 0x prefix) over message.
func RecoverAddress(message, signature string) (common.Address, error) {
	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("decode signature: %w", errs.ErrInvalidSignatureFormat)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature is %d bytes: %w", len(sig), errs.ErrInvalidSignatureFormat)
	}

	// Wallets emit V as 27/28; secp256k1 recovery wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(personalHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", errs.ErrInvalidSignatureFormat)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces a wallet-style signature over message: personal-message
// prefix, keccak256, secp256k1, V normalized to 27/28, 0x-hex encoded.
// Used by the CLI client and tests; servers only ever verify.
func Sign(message string, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(personalHash([]byte(message)), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// personalHash applies the EIP-191 domain-separation prefix before hashing,
// matching what wallet software signs for personal messages.
func personalHash(msg []byte) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(msg), msg)
	return crypto.Keccak256([]byte(prefixed))
}
