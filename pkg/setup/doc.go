// Package setup tracks whether the instance has an administrator account.
//
// The install status starts at NotReady and settles on NotInstalled or
// Installed during boot. While NotInstalled, the API exposes only the
// setup wizard; completing it creates the admin account and flips the
// status for the lifetime of the process.
package setup
