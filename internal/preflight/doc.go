// Package preflight provides readiness checks for the filesystem paths and
// notification backends the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon logs RunAll results once at startup so misconfiguration is
//     visible before the first poll cycle.
//   - The CLI "autofanfic status" command renders the same results, falling
//     back to them when the daemon is not running.
//
// Checks never mutate anything; directories that the daemon would create on
// startup report as passing when their parent is usable.
package preflight
