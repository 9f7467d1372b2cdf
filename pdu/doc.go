/*
The package pdu decodes and encodes SMS transfer protocol data units as they are exchanged with a GSM modem
in PDU mode (AT+CMGF=0). This implementation is based on:
  [23.040] 3GPP TS 23.040 Technical realization of the Short Message Service (SMS)
  [23.038] 3GPP TS 23.038 Alphabets and language-specific information
  [27.005] 3GPP TS 27.005 Use of DTE-DCE interface for SMS and CBS

The most relevant chapters in [23.040] are 9.2.2 (PDU type repertoire) and 9.2.3 (definition of the TPDU parameters).

Abbreviations:
PDU: Protocol Data Unit
TPDU: Transfer Protocol Data Unit, the PDU without the service center address
SMSC: Short Message Service Center
DCS: Data Coding Scheme
UDH: User Data Header
IEI: Information Element Identifier

Restrictions:
Compressed user data and national language shift tables are not supported.
SMS-COMMAND and SMS-SUBMIT-REPORT PDUs are not supported.

*/
package pdu
