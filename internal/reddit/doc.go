// Package reddit implements the Reddit-facing side of the scan pipeline: the
// rate-limit-aware HTTP client, the tier URL builders, and the parsers that
// map raw listing/post/comment responses onto normalized submissions.
package reddit
