// Package cloud contains the Cloud Code served by this process. Each file
// registers a Module in init(); main attaches every registered module to the
// server's Hooks through AttachAll.
package cloud
