// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package blog provides the content domain: posts, their comments, and the
// ownership checks performed before any mutation.
//
// Ownership follows a two-tier cascade for comments: the comment's own
// author may edit or delete it, and failing that, the owner of the parent
// post may. A comment whose author account was deleted keeps a null author
// reference and remains manageable by the post owner. Ownership is never
// reassigned; the post owner is a second authority, not a new owner.
package blog
