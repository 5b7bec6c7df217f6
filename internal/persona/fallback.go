package persona

import (
	"math/rand"
	"strings"
)

// Classify maps a message to its reply bucket by keyword containment,
// walking classifierRules top-down.
func Classify(text string) Bucket {
	t := strings.ToLower(text)
	for _, rule := range classifierRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(t, trigger) {
				return rule.bucket
			}
		}
	}
	return BucketDefault
}

// Fallback returns a canned victim reply for the message: classify into a
// bucket, then pick one of its templates uniformly at random. This is the
// availability floor of reply generation and cannot fail.
func Fallback(text string) string {
	bucket := Classify(text)
	options := templates[bucket]
	return options[rand.Intn(len(options))]
}

// Templates returns the reply templates for a bucket. Used by tests to assert
// a reply came from the expected bucket.
func Templates(bucket Bucket) []string {
	return append([]string(nil), templates[bucket]...)
}
