/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
  - Each bucket contains only one type of model.
  - Models are stored under a primary key and serialized with their own
    Marshal method.
  - Buckets can be registered with the query router so that clients can read
    the raw model bytes.
*/
package orm
