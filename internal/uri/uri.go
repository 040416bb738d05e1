// Package uri parses and validates s3:// URIs and distinguishes them from
// local filesystem paths.
package uri

import (
	"net"
	"regexp"
	"strings"

	s3clierrors "github.com/marmos91/s3cli/internal/errors"
)

const scheme = "s3://"

// S3URI is a parsed s3:// reference, split into its bucket and key
// components. Key may be empty (a bare bucket reference) or end in "/"
// (a prefix reference).
type S3URI struct {
	Bucket string
	Key    string
}

// String renders the S3URI back to its s3:// form.
func (u S3URI) String() string {
	if u.Key == "" {
		return scheme + u.Bucket
	}
	return scheme + u.Bucket + "/" + u.Key
}

// IsPrefix reports whether the URI names a prefix (trailing slash or empty key).
func (u S3URI) IsPrefix() bool {
	return u.Key == "" || strings.HasSuffix(u.Key, "/")
}

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// IsLocal reports whether str is a local filesystem path rather than an
// s3:// URI.
func IsLocal(str string) bool {
	return !strings.HasPrefix(str, scheme)
}

// Parse parses str as an s3:// URI, validating the bucket name against S3's
// naming constraints. Returns InvalidUri if the scheme is absent or the
// bucket name is invalid.
func Parse(str string) (S3URI, error) {
	if !strings.HasPrefix(str, scheme) {
		return S3URI{}, s3clierrors.New(s3clierrors.KindInvalidUri,
			"missing s3:// scheme: "+str)
	}

	rest := str[len(scheme):]
	if rest == "" {
		return S3URI{}, s3clierrors.New(s3clierrors.KindInvalidUri,
			"empty bucket in uri: "+str)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if err := ValidateBucketName(bucket); err != nil {
		return S3URI{}, err
	}

	return S3URI{Bucket: bucket, Key: key}, nil
}

// ValidateBucketName checks a bucket name against S3's naming rules:
// 3-63 characters, lowercase letters/digits/dots/hyphens, must start and
// end with a letter or digit, no consecutive dots, and not formatted as an
// IPv4 address.
func ValidateBucketName(bucket string) error {
	if len(bucket) < 3 || len(bucket) > 63 {
		return s3clierrors.New(s3clierrors.KindInvalidUri,
			"bucket name must be 3-63 characters: "+bucket)
	}
	if !bucketNamePattern.MatchString(bucket) {
		return s3clierrors.New(s3clierrors.KindInvalidUri,
			"bucket name contains invalid characters or placement: "+bucket)
	}
	if strings.Contains(bucket, "..") {
		return s3clierrors.New(s3clierrors.KindInvalidUri,
			"bucket name must not contain consecutive dots: "+bucket)
	}
	if net.ParseIP(bucket) != nil {
		return s3clierrors.New(s3clierrors.KindInvalidUri,
			"bucket name must not be formatted as an IP address: "+bucket)
	}
	return nil
}

// SplitPrefix splits an S3URI into its bucket and key-prefix components,
// for use with ListObjectsV2 and similar prefix-scoped operations.
func SplitPrefix(u S3URI) (bucket, keyPrefix string) {
	return u.Bucket, u.Key
}
