// Package artifact persists captured invocation results (stdout, stderr,
// exit status) on disk and publishes them under fingerprint-named pointers.
//
// Layout under the cache root:
//
//	<root>/sweep.marker            mtime = last janitor sweep
//	<root>/data/<ttl-seconds>/     one bucket per governing TTL
//	    art-<random>/              immutable artifact directory
//	        stdout                 raw captured bytes
//	        stderr                 raw captured bytes
//	        exit                   decimal exit code
//	    <fingerprint>              symlink to the published artifact dir
//
// Pointers are swapped atomically (symlink-then-rename), so a concurrent
// reader observes either the old artifact or the new one, never a partial
// write. Superseded artifact directories are orphaned rather than deleted
// eagerly; the janitor reclaims them later so in-flight reads can finish.
package artifact
