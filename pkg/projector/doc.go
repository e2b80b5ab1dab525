// Package projector publishes the DOM ids and auxiliary text the client-side
// analysis script needs. On every form build it locates tracked sub-fields in
// the form tree by configured dotted paths and writes a flat settings
// dictionary under "#attached.drupalSettings.yoast_seo". Missing form paths
// degrade to empty values; only collaborator failures are returned as errors.
//
// The projector keeps no per-request state: the fields configuration is
// extended through a per-call overlay and target ids are generated per build.
package projector
