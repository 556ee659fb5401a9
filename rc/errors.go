/*
NAME
  errors.go

LICENSE
  Copyright (C) 2026 the mpp contributors. All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the mpp contributors.
*/

package rc

import "github.com/pkg/errors"

// Sentinel errors returned by package rc.
var (
	// ErrWindowCapacity is returned by NewWindow for a non-positive capacity.
	ErrWindowCapacity = errors.New("rc: window capacity must be positive")

	// ErrNotInitialized is returned by lifecycle callbacks invoked on a
	// Controller that has not had Init called.
	ErrNotInitialized = errors.New("rc: controller not initialized")

	// ErrBadVgop is returned by Init when GopMode is SmartP and Vgop is not
	// greater than 1, mirroring the source's mpp_assert(vgop > 1).
	ErrBadVgop = errors.New("rc: smart-P gop mode requires vgop > 1")
)
