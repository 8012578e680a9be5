// Package discovery implements mDNS/DNS-SD discovery of log servers.
//
// A log server advertises one service instance of type _logview._tcp in the
// local domain. The instance name is user-friendly (usually the application
// name); the port is the transport listen port.
//
// # TXT Records
//
//   - ver: protocol version (required)
//   - rid: recording ID of the current run (optional)
//   - app: producing application name (optional)
//
// Viewers use Browse to follow servers as they appear, or FindAll to take a
// snapshot for a fixed time. A server seen on several interfaces is reported
// once, with the addresses of all interfaces merged.
package discovery
