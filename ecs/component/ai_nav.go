package component

import "github.com/milk9111/sentinel/navigation"

// NavigationComponent holds this tick's terrain report.
var NavigationComponent = NewComponent[navigation.Report]()

// WallScanComponent holds the last extended wall scan, if one ran.
var WallScanComponent = NewComponent[navigation.WallReport]()
