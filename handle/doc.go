// Package handle implements the ownership tables that carry native values
// across the guest boundary. Guests never see host pointers: every adapter
// hands out a dense uint32 handle into a slab-backed table, and the
// trampoline layer translates handles back into values on each call.
//
// Three adapter families mirror the three ownership disciplines of the
// bound surface:
//
//   - Unique: exclusive ownership. Drop destroys the value exactly once;
//     Release transfers it out first, making the later Drop a no-op.
//   - Shared: reference-counted ownership over a control block. Clone adds
//     a strong reference; the value dies with the last strong drop.
//   - Weak: non-owning observation of a Shared value. Upgrade recovers a
//     strong reference while the value lives and returns Null afterwards.
//
// Every family also supports a two-phase construction protocol: Uninit
// reserves a tagged slot, Emplace constructs the value in place. Dropping a
// slot that was never emplaced frees it without running the destructor.
//
// Handle 0 is never issued and is the null state of every family.
package handle
