/*
The package at parses the responses of a GSM modem to AT commands and builds the command strings
to request them. This implementation is based on:
  [27.007] 3GPP TS 27.007 AT command set for User Equipment (UE)
  [27.005] 3GPP TS 27.005 Use of DTE-DCE interface for SMS and CBS
  [V.250] ITU-T V.250 Serial asynchronous automatic dialling and control

A response line consists of a tag (e.g. +CREG) and a list of comma separated fields. Modems are
sloppy with quoting, the Scanner therefore has a tolerant mode that still yields a value for
unterminated or stray quotes, and a strict mode for responses where a partial read must be detected.

The parsers do not talk to the modem. The Request functions use a Requester which is provided
by the caller and owns the transport.

Abbreviations:
URC: Unsolicited Result Code
LAC: Location Area Code
CI: Cell Identity
USSD: Unstructured Supplementary Service Data
DCS: Data Coding Scheme

*/
package at
