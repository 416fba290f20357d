// Package sources assembles dispatch.Options maps from the places wrapper
// authors keep their defaults: literal maps, config files, environment
// variables, command-line flags, structs, and key=value pairs.
//
// Sources carry a priority and load into a single koanf instance in
// ascending order, so later sources override earlier ones the same way
// caller options override defaults at dispatch time. Group.Load optionally
// runs resolver passes (variable references, expressions) over the merged
// set before handing back a plain Options map.
package sources
