// Package control keeps the shards moving.
//
// [Field] runs as a pre-step hook. It pushes every dynamic body with a small
// random "current" proportional to its mass, then hands the body's velocity
// to a [Governor]:
//
//   - [Floor]: boosts bodies that have almost stopped
//   - [Ceiling]: damps bodies that move too fast
//   - [None]: leaves velocity alone
//
// The field draws from an injected *rand.Rand so seeded runs repeat exactly.
package control
