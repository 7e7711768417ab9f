/*
Package orm provides a thin typed layer over a msgauth.KVStore.

State space is broken into prefixed sections called buckets.
  - Each bucket contains only one type of model.
  - Models are addressed by a primary key chosen by the caller. Keys that
    share a prefix are stored next to each other and can be scanned in
    ascending order.
  - A bucket may declare secondary, non-unique indexes. Index entries are
    kept in the same store, so they are written atomically together with
    the model when the store is a cache wrap.
*/
package orm
