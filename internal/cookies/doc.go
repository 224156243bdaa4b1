// Package cookies imports cookies from browser cookie stores into the
// daemon. Firefox and Chromium SQLite databases and Netscape text files
// are supported. SQLite files are copied before reading so a running
// browser keeps its lock.
//
// Cookie values are never logged; only names and domains are.
package cookies
