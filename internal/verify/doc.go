// Package verify runs device declarations through validation and the
// composition check, declares the accepted devices and reports every
// verdict.
//
// A run produces one Report per declaration:
//
//	svc := verify.NewService(registry)
//	svc.SetStore(verify.NewSQLiteReportStore(db.DB))
//	svc.SetPublisher(mqttClient)
//	svc.SetMetrics(influxClient)
//
//	summary, err := svc.VerifyAll(ctx, decls)
//	if err != nil {
//	    return err // ordering or storage failure
//	}
//	if !summary.OK() {
//	    // at least one device was rejected; see summary.Reports
//	}
//
// CheckAll and CheckManifest are dry runs: they validate against the
// registry without declaring, storing or publishing anything.
package verify
