package httpsig

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"
	"net/http"

	"github.com/vitalvas/msgsig/sfv"
)

// DigestAlgorithm identifies the hash algorithm for Content-Digest
// per RFC 9530.
type DigestAlgorithm string

const (
	// DigestSHA256 uses SHA-256 for content digest.
	DigestSHA256 DigestAlgorithm = "sha-256"

	// DigestSHA512 uses SHA-512 for content digest.
	DigestSHA512 DigestAlgorithm = "sha-512"
)

// SetContentDigest reads the request body, computes the digest using the
// specified algorithm, sets the Content-Digest header per RFC 9530, and
// replaces the body so it can be read again.
func SetContentDigest(r *http.Request, alg DigestAlgorithm) error {
	return setDigest(r.Header, &r.Body, alg)
}

// SetResponseDigest is SetContentDigest for a response.
func SetResponseDigest(resp *http.Response, alg DigestAlgorithm) error {
	return setDigest(resp.Header, &resp.Body, alg)
}

// VerifyContentDigest verifies the Content-Digest header against the request
// body per RFC 9530. Every member with a supported algorithm must match;
// members with unknown algorithms are ignored.
func VerifyContentDigest(r *http.Request) error {
	return verifyDigest(r.Header, &r.Body)
}

// VerifyResponseDigest is VerifyContentDigest for a response.
func VerifyResponseDigest(resp *http.Response) error {
	return verifyDigest(resp.Header, &resp.Body)
}

func setDigest(h http.Header, body *io.ReadCloser, alg DigestAlgorithm) error {
	data, err := readAndRestoreBody(body)
	if err != nil {
		return err
	}

	digest, err := computeDigest(data, alg)
	if err != nil {
		return err
	}

	d := sfv.NewDictionary()
	d.Set(string(alg), sfv.Item{Value: digest})

	value, err := sfv.SerializeDictionary(d)
	if err != nil {
		return err
	}

	h.Set("Content-Digest", value)

	return nil
}

func verifyDigest(h http.Header, body *io.ReadCloser) error {
	values := h.Values("Content-Digest")
	if len(values) == 0 {
		return ErrDigestNotFound
	}

	digests := sfv.NewDictionary()

	for _, v := range values {
		d, err := sfv.ParseDictionary(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMalformedComponent, headerContentDigest, err)
		}

		for _, k := range d.Keys() {
			m, _ := d.Get(k)
			digests.Set(k, m)
		}
	}

	data, err := readAndRestoreBody(body)
	if err != nil {
		return err
	}

	checked := 0

	for _, k := range digests.Keys() {
		alg := DigestAlgorithm(k)
		if alg != DigestSHA256 && alg != DigestSHA512 {
			continue
		}

		m, _ := digests.Get(k)

		it, ok := m.(sfv.Item)
		if !ok {
			return fmt.Errorf("%w: %s member %q is not an item", ErrMalformedComponent, headerContentDigest, k)
		}

		actual, ok := it.Value.([]byte)
		if !ok {
			return fmt.Errorf("%w: %s member %q is not byte-sequence encoded", ErrMalformedComponent, headerContentDigest, k)
		}

		expected, err := computeDigest(data, alg)
		if err != nil {
			return err
		}

		if !bytes.Equal(expected, actual) {
			return fmt.Errorf("%w: %s", ErrDigestMismatch, alg)
		}

		checked++
	}

	if checked == 0 {
		return ErrUnsupportedDigest
	}

	return nil
}

// computeDigest computes the hash of data using the specified algorithm.
func computeDigest(data []byte, alg DigestAlgorithm) ([]byte, error) {
	switch alg {
	case DigestSHA256:
		h := sha256.Sum256(data)
		return h[:], nil
	case DigestSHA512:
		h := sha512.Sum512(data)
		return h[:], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDigest, alg)
	}
}

// readAndRestoreBody reads the entire body and replaces it with a new
// reader so the body can be consumed again by downstream handlers.
func readAndRestoreBody(body *io.ReadCloser) ([]byte, error) {
	if *body == nil || *body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(*body)
	if err != nil {
		return nil, err
	}

	(*body).Close()
	*body = io.NopCloser(bytes.NewReader(data))

	return data, nil
}
