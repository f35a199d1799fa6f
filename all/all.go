// Package all imports all supported registry implementations.
//
// Import this package for its side effects to register all ecosystems:
//
//	import (
//		"github.com/git-pkgs/libyear"
//		_ "github.com/git-pkgs/libyear/all"
//	)
//
//	// Now all ecosystems are available
//	ecosystems := libyear.SupportedEcosystems()
//	// ["nuget"]
package all

import (
	_ "github.com/git-pkgs/libyear/internal/nuget"
)
