// Package seev renders an extracted meeting record as an ISO 20022
// seev.001.001.12 meeting notification.
//
// Element order follows the message schema and must not be changed. Every
// optional field has a default, and every text field is cut to the schema's
// width limit before it is escaped.
package seev
