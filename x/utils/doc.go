/*
Package utils provides decorators shared by every gasless application:
transaction savepoints, panic recovery, logging and action tagging.
*/
package utils
