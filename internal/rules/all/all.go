// Package all imports all rule packages to register them.
// Import this package with a blank identifier to enable all rules:
//
//	import _ "github.com/wharflab/pslint/internal/rules/all"
package all

import (
	// Import all rule packages to trigger their init() registration
	_ "github.com/wharflab/pslint/internal/rules/approvedverbs"
	_ "github.com/wharflab/pslint/internal/rules/avoiddefaultvalueswitch"
	_ "github.com/wharflab/pslint/internal/rules/bomencoding"
	_ "github.com/wharflab/pslint/internal/rules/brokenhashalgorithms"
	_ "github.com/wharflab/pslint/internal/rules/cmdletaliases"
	_ "github.com/wharflab/pslint/internal/rules/comparisonwithnull"
	_ "github.com/wharflab/pslint/internal/rules/compatiblecmdlets"
	_ "github.com/wharflab/pslint/internal/rules/dscartifacts"
	_ "github.com/wharflab/pslint/internal/rules/dscidenticalparameters"
	_ "github.com/wharflab/pslint/internal/rules/dscverbosemessage"
	_ "github.com/wharflab/pslint/internal/rules/exclaimoperator"
	_ "github.com/wharflab/pslint/internal/rules/globalvars"
	_ "github.com/wharflab/pslint/internal/rules/hardcodedsecrets"
	_ "github.com/wharflab/pslint/internal/rules/invokeexpression"
	_ "github.com/wharflab/pslint/internal/rules/longlines"
	_ "github.com/wharflab/pslint/internal/rules/plaintextpassword"
	_ "github.com/wharflab/pslint/internal/rules/positionalparameters"
	_ "github.com/wharflab/pslint/internal/rules/standarddscfunctions"
	_ "github.com/wharflab/pslint/internal/rules/trailingwhitespace"
	_ "github.com/wharflab/pslint/internal/rules/writehost"
)
