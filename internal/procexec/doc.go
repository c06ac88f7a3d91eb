// Package procexec runs external binaries and captures their output streams.
//
// Runner is the seam used by the locator and the build-info cache; tests swap
// in fakes that count invocations. ExecRunner treats a non-zero exit status as
// data rather than failure: the encoder reports its build configuration on
// stderr and may exit non-zero while doing so. Errors are reserved for
// processes that could not be started or were cut short by the context.
package procexec
