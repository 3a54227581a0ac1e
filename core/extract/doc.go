// Package extract turns a parsed lending-market page into rate records.
//
// [Engine.Run] applies four strategies in a fixed order and stops at the first
// one that yields any record:
//
//  1. table: tables whose header row mentions supply, rate, apy or apr
//  2. container: small div widgets with rate-like classes and a "%" in them
//  3. percentage: short text around a "%" that mentions supply, apy or apr
//  4. contract_only: one record per address found anywhere on the page
//
// Every record carries the source label under "protocol" and, when one can be
// associated, a "contract_address". The numeric thresholds are heuristics
// collected in [Heuristics]; tune them there rather than in the strategies.
//
// The engine keeps no state between calls and never modifies its input, so a
// single Engine can serve concurrent extractions.
package extract
