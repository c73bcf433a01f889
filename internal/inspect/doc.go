// Package inspect audits collected images for embedded metadata.
//
// Photos published on a site often still carry EXIF tags such as GPS
// coordinates, device serial numbers or the author's name. The Inspector
// reports them as findings so the operator knows what the clone contains.
// Asset content is never modified.
package inspect
