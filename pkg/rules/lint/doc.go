// Package lint checks rulesets for authoring mistakes before they are used
// to validate data.
package lint
