// Package feed decodes raw revision feeds into panel rows.
//
// A feed is CSV with three mandatory role columns - location, observation
// time, and version - and any number of additional columns, which are
// transported unchanged as opaque value fields. A Spec names the role
// columns and fixes the location/time kinds; specs can be loaded from
// YAML files for feeds whose headers differ from the defaults.
package feed
