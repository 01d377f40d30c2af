// Package movies owns the persisted movie collection: the Record type, the
// canonical sanitizer every record passes through, the Store that reads and
// writes the whole collection under a single key, and pure query helpers over
// a loaded collection.
//
// Nothing outside this package constructs a stored Record without going
// through Sanitize. Reads recover from malformed persisted data by treating
// the collection as empty and logging a warning.
package movies
