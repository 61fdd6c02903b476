package component

import "github.com/milk9111/sentinel/threat"

var ThreatComponent = NewComponent[threat.Profile]()
